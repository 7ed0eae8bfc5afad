package world

import "github.com/zeusync/tankclient/internal/core/models"

// Renderer is the graphics collaborator. All calls are synchronous and made
// from the tick goroutine.
type Renderer interface {
	EntityAdded(e *models.Entity)
	EntityRemoved(e *models.Entity)
	GeometryChanged(e *models.Entity)
	// VisibilityChanged is only called when the flag actually flips.
	VisibilityChanged(e *models.Entity, visible bool)
	WorldResized(pixelScale float64)
	TilesChanged(tiles []*models.Tile)
}

// Notifier is the roster/UI collaborator. Implementations must not call
// back into the engine synchronously.
type Notifier interface {
	PlayerSnapshotChanged(uid models.UID, snap models.Snapshot)
	RosterChanged(players []models.RosterEntry)
	GameEnded(ranking Ranking)
	FatalError(messages []string)
	Notice(message string)
}

// TypeCatalog resolves static element types by name.
type TypeCatalog interface {
	Type(name string) (*models.Type, bool)
}

// Ranking is the payload of GameEnd. Rank lists player UIDs best first.
type Ranking struct {
	UIDs []models.UID
	Rank []models.UID
}

// Winner returns the first ranked player, if any.
func (r Ranking) Winner() (models.UID, bool) {
	if len(r.Rank) == 0 {
		return 0, false
	}
	return r.Rank[0], true
}

var (
	_ Renderer = NopRenderer{}
	_ Notifier = NopNotifier{}
)

type NopRenderer struct{}

func (NopRenderer) EntityAdded(*models.Entity)             {}
func (NopRenderer) EntityRemoved(*models.Entity)           {}
func (NopRenderer) GeometryChanged(*models.Entity)         {}
func (NopRenderer) VisibilityChanged(*models.Entity, bool) {}
func (NopRenderer) WorldResized(float64)                   {}
func (NopRenderer) TilesChanged([]*models.Tile)            {}

type NopNotifier struct{}

func (NopNotifier) PlayerSnapshotChanged(models.UID, models.Snapshot) {}
func (NopNotifier) RosterChanged([]models.RosterEntry)                {}
func (NopNotifier) GameEnded(Ranking)                                 {}
func (NopNotifier) FatalError([]string)                               {}
func (NopNotifier) Notice(string)                                     {}
