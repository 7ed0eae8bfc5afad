// Package notify bridges the world engine's collaborator hooks to the
// notification bus and to the log for headless sessions.
package notify

import (
	"github.com/zeusync/tankclient/internal/core/events/bus"
	"github.com/zeusync/tankclient/internal/core/market"
	"github.com/zeusync/tankclient/internal/core/models"
	"github.com/zeusync/tankclient/internal/core/observability/log"
	"github.com/zeusync/tankclient/internal/core/world"
)

// Bus event types.
const (
	TypePlayerSnapshot = "player.snapshot"
	TypeRosterChanged  = "roster.changed"
	TypeGameEnded      = "game.ended"
	TypeFatal          = "game.fatal"
	TypeNotice         = "game.notice"
	TypeAuction        = "market.auction"
)

const source = "world"

// PlayerSnapshot is the payload of TypePlayerSnapshot.
type PlayerSnapshot struct {
	UID      models.UID
	Snapshot models.Snapshot
}

var _ world.Notifier = (*Bus)(nil)

// Bus is a world.Notifier that publishes every notification on an EventBus.
// Handler errors are logged, never returned to the engine.
type Bus struct {
	bus    bus.EventBus
	logger log.Log
}

func NewBus(b bus.EventBus, logger log.Log) *Bus {
	return &Bus{bus: b, logger: logger.With(log.String("component", "notify"))}
}

func (n *Bus) publish(typ string, data any) {
	if err := n.bus.Publish(bus.NewEvent(typ, source, data)); err != nil {
		n.logger.Warn("Notification handler failed", log.String("type", typ), log.Error(err))
	}
}

func (n *Bus) PlayerSnapshotChanged(uid models.UID, snap models.Snapshot) {
	n.publish(TypePlayerSnapshot, PlayerSnapshot{UID: uid, Snapshot: snap})
}

func (n *Bus) RosterChanged(players []models.RosterEntry) {
	n.publish(TypeRosterChanged, players)
}

func (n *Bus) GameEnded(ranking world.Ranking) {
	n.publish(TypeGameEnded, ranking)
}

func (n *Bus) FatalError(messages []string) {
	n.publish(TypeFatal, messages)
}

func (n *Bus) Notice(message string) {
	n.publish(TypeNotice, message)
}

// WatchAuction republishes every auction state change as TypeAuction.
func (n *Bus) WatchAuction(a *market.Auction) {
	a.OnChange(func(s market.AuctionState) {
		n.publish(TypeAuction, s)
	})
}
