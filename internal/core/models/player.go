package models

// PlayerDefaults are the starting stats announced by the Init record.
type PlayerDefaults struct {
	Money        float64 `json:"money"`
	VisionRadius float64 `json:"visRad"`
	MaxHP        float64 `json:"mHP"`
	Speed        float64 `json:"tkSpd"`
}

// PlayerData is the tank-only part of an Entity.
type PlayerData struct {
	Owner        string
	Alive        bool
	Money        float64
	VisionRadius float64
	Speed        float64
	Debug        string
	Color        Color
}

// NewPlayer builds a tank entity owned by owner. Stats start from defaults;
// maxHP overrides the default maximum when non-nil.
func NewPlayer(uid UID, typ *Type, x, y, rad float64, owner string, maxHP *float64, defaults PlayerDefaults, color Color) *Entity {
	e := NewEntity(uid, typ, x, y, rad, 0, 0)
	e.HasHP = true
	e.MaxHP = defaults.MaxHP
	if maxHP != nil {
		e.MaxHP = *maxHP
	}
	e.HP = e.MaxHP
	e.Player = &PlayerData{
		Owner:        owner,
		Alive:        true,
		Money:        defaults.Money,
		VisionRadius: defaults.VisionRadius,
		Speed:        defaults.Speed,
		Color:        color,
	}
	return e
}

// PlayerPatch is a partial update of player stats; nil fields are left untouched.
type PlayerPatch struct {
	Money        *float64 `json:"money,omitempty"`
	VisionRadius *float64 `json:"visionRadius,omitempty"`
	MaxHP        *float64 `json:"maxHp,omitempty"`
	Speed        *float64 `json:"speed,omitempty"`
	Debug        *string  `json:"debugStr,omitempty"`
}

// ApplyPlayer merges p into the player payload. It is a no-op on
// non-player entities.
func (e *Entity) ApplyPlayer(p PlayerPatch) {
	if e.Player == nil {
		return
	}
	if p.Money != nil {
		e.Player.Money = *p.Money
	}
	if p.VisionRadius != nil {
		e.Player.VisionRadius = *p.VisionRadius
	}
	if p.MaxHP != nil {
		e.MaxHP = *p.MaxHP
		e.HasHP = true
	}
	if p.Speed != nil {
		e.Player.Speed = *p.Speed
	}
	if p.Debug != nil {
		e.Player.Debug = *p.Debug
	}
}

// Snapshot is the per-player state shown by the roster UI.
type Snapshot struct {
	Alive        bool    `json:"alive"`
	Money        float64 `json:"money"`
	HP           float64 `json:"hp"`
	MaxHP        float64 `json:"maxHp"`
	VisionRadius float64 `json:"visionRadius"`
	Speed        float64 `json:"speed"`
	DebugString  string  `json:"debugString"`
}

// Snapshot returns the current player state. The zero Snapshot is returned
// for non-player entities.
func (e *Entity) Snapshot() Snapshot {
	if e.Player == nil {
		return Snapshot{}
	}
	return Snapshot{
		Alive:        e.Player.Alive,
		Money:        e.Player.Money,
		HP:           e.HP,
		MaxHP:        e.MaxHP,
		VisionRadius: e.Player.VisionRadius,
		Speed:        e.Player.Speed,
		DebugString:  e.Player.Debug,
	}
}

// RosterEntry is one line of the player list.
type RosterEntry struct {
	UID      UID      `json:"uid"`
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	Snapshot Snapshot `json:"state"`
}
