package notify

import (
	"github.com/zeusync/tankclient/internal/core/events/bus"
	"github.com/zeusync/tankclient/internal/core/market"
	"github.com/zeusync/tankclient/internal/core/models"
	"github.com/zeusync/tankclient/internal/core/observability/log"
	"github.com/zeusync/tankclient/internal/core/world"
)

var _ world.Renderer = (*LogRenderer)(nil)

// LogRenderer stands in for a graphical renderer: lifecycle and visibility
// changes go to the debug log.
type LogRenderer struct {
	logger log.Log
}

func NewLogRenderer(logger log.Log) *LogRenderer {
	return &LogRenderer{logger: logger.With(log.String("component", "renderer"))}
}

func (r *LogRenderer) EntityAdded(e *models.Entity) {
	r.logger.Debug("Entity added", entityFields(e)...)
}

func (r *LogRenderer) EntityRemoved(e *models.Entity) {
	r.logger.Debug("Entity removed", log.Int64("uid", int64(e.UID)))
}

func (r *LogRenderer) GeometryChanged(*models.Entity) {}

func (r *LogRenderer) VisibilityChanged(e *models.Entity, visible bool) {
	r.logger.Debug("Visibility changed", log.Int64("uid", int64(e.UID)), log.Bool("visible", visible))
}

func (r *LogRenderer) WorldResized(pixelScale float64) {
	r.logger.Debug("World resized", log.Float64("pixel_scale", pixelScale))
}

func (r *LogRenderer) TilesChanged(tiles []*models.Tile) {
	r.logger.Debug("Tiles changed", log.Int("tiles", len(tiles)))
}

func entityFields(e *models.Entity) []log.Field {
	fields := []log.Field{
		log.Int64("uid", int64(e.UID)),
		log.Float64("x", e.X),
		log.Float64("y", e.Y),
		log.Bool("visible", e.Visible()),
	}
	if e.Type != nil {
		fields = append(fields, log.String("type", e.Type.Name))
	}
	if e.IsPlayer() {
		fields = append(fields, log.String("owner", e.Player.Owner), log.String("color", e.Player.Color.Hex()))
	}
	return fields
}

// LogSubscriber prints bus notifications: the headless UI.
type LogSubscriber struct {
	logger log.Log
	subs   []bus.Subscription
}

// SubscribeLog registers log handlers for every notification type.
func SubscribeLog(b bus.EventBus, logger log.Log) (*LogSubscriber, error) {
	s := &LogSubscriber{logger: logger.With(log.String("component", "ui"))}
	handlers := map[string]bus.EventHandler{
		TypePlayerSnapshot: s.onSnapshot,
		TypeRosterChanged:  s.onRoster,
		TypeGameEnded:      s.onGameEnded,
		TypeFatal:          s.onFatal,
		TypeNotice:         s.onNotice,
		TypeAuction:        s.onAuction,
	}
	for typ, h := range handlers {
		sub, err := b.Subscribe(typ, h)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.subs = append(s.subs, sub)
	}
	return s, nil
}

// Close cancels every subscription.
func (s *LogSubscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Cancel()
	}
	s.subs = nil
}

func (s *LogSubscriber) onSnapshot(e bus.Event) error {
	p := e.Data().(PlayerSnapshot)
	s.logger.Debug("Player state",
		log.Int64("uid", int64(p.UID)),
		log.Bool("alive", p.Snapshot.Alive),
		log.Float64("money", p.Snapshot.Money),
		log.Float64("hp", p.Snapshot.HP),
		log.Float64("max_hp", p.Snapshot.MaxHP))
	return nil
}

func (s *LogSubscriber) onRoster(e bus.Event) error {
	roster := e.Data().([]models.RosterEntry)
	names := make([]string, 0, len(roster))
	for _, p := range roster {
		names = append(names, p.Name)
	}
	s.logger.Info("Roster", log.Strings("players", names))
	return nil
}

func (s *LogSubscriber) onGameEnded(e bus.Event) error {
	r := e.Data().(world.Ranking)
	fields := []log.Field{log.Any("rank", r.Rank)}
	if winner, ok := r.Winner(); ok {
		fields = append(fields, log.Int64("winner", int64(winner)))
	}
	s.logger.Info("Game over", fields...)
	return nil
}

func (s *LogSubscriber) onFatal(e bus.Event) error {
	s.logger.Error("Session aborted", log.Strings("messages", e.Data().([]string)))
	return nil
}

func (s *LogSubscriber) onNotice(e bus.Event) error {
	s.logger.Info(e.Data().(string))
	return nil
}

func (s *LogSubscriber) onAuction(e bus.Event) error {
	st := e.Data().(market.AuctionState)
	fields := []log.Field{log.String("selling", st.Selling), log.Int("min_bid", st.MinBid)}
	if st.LastBidder != nil {
		fields = append(fields, log.Int64("last_bidder", int64(*st.LastBidder)))
	}
	s.logger.Info("Auction", fields...)
	return nil
}
