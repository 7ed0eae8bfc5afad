package models

import "math"

// Entity is the client-side mirror of one world object. A tank carries a
// non-nil Player payload; every other entity leaves it nil.
type Entity struct {
	UID    UID
	Type   *Type
	X      float64
	Y      float64
	Rad    float64
	Width  float64
	Height float64

	HasHP bool
	HP    float64
	MaxHP float64

	Player *PlayerData

	visible bool
}

// NewEntity creates a visible entity of the given type. Width and height
// default to the type's dimensions when zero, HP to the type's max HP.
func NewEntity(uid UID, typ *Type, x, y, rad, width, height float64) *Entity {
	e := &Entity{
		UID:     uid,
		Type:    typ,
		X:       x,
		Y:       y,
		Rad:     rad,
		Width:   width,
		Height:  height,
		visible: true,
	}
	if typ != nil {
		if e.Width == 0 {
			e.Width = typ.Width
		}
		if e.Height == 0 {
			e.Height = typ.Height
		}
		if typ.HP != nil {
			e.HasHP = true
			e.MaxHP = *typ.HP
			e.HP = *typ.HP
		}
	}
	return e
}

// IsPlayer reports whether the entity is a tank owned by a player.
func (e *Entity) IsPlayer() bool {
	return e.Player != nil
}

func (e *Entity) Visible() bool {
	return e.visible
}

// SetVisible updates the visibility flag and reports whether it changed.
// Callers forward the change to the renderer only when true is returned.
func (e *Entity) SetVisible(visible bool) bool {
	if e.visible == visible {
		return false
	}
	e.visible = visible
	return true
}

// DistanceTo returns the Euclidean distance between the two centres.
func (e *Entity) DistanceTo(other *Entity) float64 {
	return math.Hypot(e.X-other.X, e.Y-other.Y)
}

// EntityPatch is a partial update; nil fields are left untouched.
type EntityPatch struct {
	X   *float64 `json:"x,omitempty"`
	Y   *float64 `json:"y,omitempty"`
	Rad *float64 `json:"rad,omitempty"`
	HP  *float64 `json:"hp,omitempty"`
}

// Apply merges the present fields of p over e.
func (e *Entity) Apply(p EntityPatch) {
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.Rad != nil {
		e.Rad = *p.Rad
	}
	if p.HP != nil {
		e.HP = *p.HP
		e.HasHP = true
	}
}
