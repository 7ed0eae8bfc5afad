// Package world owns the client-side mirror of the game: it applies
// timeline events to the entity model and derives visibility and the
// player roster from them.
package world

import (
	"fmt"
	"math"

	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/internal/core/market"
	"github.com/zeusync/tankclient/internal/core/models"
	"github.com/zeusync/tankclient/internal/core/observability/log"
	"github.com/zeusync/tankclient/internal/core/observability/metrics"
	"github.com/zeusync/tankclient/internal/core/timeline"
)

// Mode selects how the engine treats visibility and outbound commands.
type Mode uint8

const (
	ModeRealTime Mode = iota
	ModeObserver
	ModeReplay
)

func (m Mode) String() string {
	switch m {
	case ModeRealTime:
		return "RealTime"
	case ModeObserver:
		return "Observer"
	case ModeReplay:
		return "Replay"
	default:
		return "Unknown"
	}
}

// Options configures an Engine. Zero collaborators are replaced by no-op
// implementations.
type Options struct {
	Mode Mode

	// PlayerName is this session's name; the tank it owns becomes the
	// controlled entity in real-time mode.
	PlayerName string
	Defaults   models.PlayerDefaults

	Width       float64
	Height      float64
	PixelWidth  float64
	PixelHeight float64

	Rule     market.Rule
	Types    TypeCatalog
	Renderer Renderer
	Notifier Notifier
	Colors   *models.ColorAllocator
	Commands market.CommandSender
	Logger   log.Log
	Metrics  metrics.Recorder
}

// Engine is the world orchestrator. It is single-writer: every method must
// be called from the tick goroutine. Only the live timeline may be fed from
// elsewhere.
type Engine struct {
	mode       Mode
	playerName string
	defaults   models.PlayerDefaults

	timeline timeline.Timeline
	rule     market.Rule
	types    TypeCatalog
	renderer Renderer
	notifier Notifier
	colors   *models.ColorAllocator
	commands market.CommandSender
	logger   log.Log
	metrics  metrics.Recorder

	entities    map[models.UID]*models.Entity
	players     map[models.UID]*models.Entity
	rosterOrder []models.UID
	tiles       []*models.Tile

	width       float64
	height      float64
	pixelWidth  float64
	pixelHeight float64
	pixelScale  float64

	clock float64

	controlled *models.Entity
	revealed   bool
	onBound    []func(*models.Entity)

	frozen bool
	halted bool
}

var _ market.Host = (*Engine)(nil)

// New creates an engine reading from tl. The pricing rule is initialised
// once here, after the mode is known.
func New(tl timeline.Timeline, opts Options) *Engine {
	w := &Engine{
		mode:        opts.Mode,
		playerName:  opts.PlayerName,
		defaults:    opts.Defaults,
		timeline:    tl,
		rule:        opts.Rule,
		types:       opts.Types,
		renderer:    opts.Renderer,
		notifier:    opts.Notifier,
		colors:      opts.Colors,
		commands:    opts.Commands,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		entities:    make(map[models.UID]*models.Entity),
		players:     make(map[models.UID]*models.Entity),
		width:       opts.Width,
		height:      opts.Height,
		pixelWidth:  opts.PixelWidth,
		pixelHeight: opts.PixelHeight,
	}
	if w.rule == nil {
		w.rule = market.None{}
	}
	if w.types == nil {
		w.types = emptyCatalog{}
	}
	if w.renderer == nil {
		w.renderer = NopRenderer{}
	}
	if w.notifier == nil {
		w.notifier = NopNotifier{}
	}
	if w.colors == nil {
		w.colors = models.NewColorAllocator(0)
	}
	if w.logger == nil {
		w.logger = log.NewNop()
	}
	w.logger = w.logger.With(log.String("component", "world"), log.String("mode", w.mode.String()))
	if w.metrics == nil {
		w.metrics = metrics.Nop{}
	}
	w.pixelScale = w.computeScale()
	w.rule.Init(w)
	return w
}

type emptyCatalog struct{}

func (emptyCatalog) Type(string) (*models.Type, bool) { return nil, false }

// AdvanceTo applies pending events. Gated timelines stop at the first event
// later than target; live timelines drain completely. Application stops at
// the first failure, which has already been logged and reported to the
// notifier when it is returned.
func (w *Engine) AdvanceTo(target int64) error {
	defer func() { w.metrics.TimelineDepth(w.timeline.Len()) }()

	for !w.frozen && !w.halted {
		ev, ok := w.timeline.Peek()
		if !ok {
			return nil
		}
		if w.timeline.Gated() && ev.T > target {
			return nil
		}
		w.timeline.Pop()

		if err := w.apply(ev); err != nil {
			return w.fail(ev, err)
		}
		w.metrics.EventApplied(ev.Kind.String())
	}
	return nil
}

// apply dispatches one event and converts panics into errors so a broken
// record never takes the process down.
func (w *Engine) apply(ev events.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while applying event: %v", r)
		}
	}()
	return w.dispatch(ev)
}

func (w *Engine) fail(ev events.Event, err error) error {
	malformed := &events.MalformedEventError{T: ev.T, Kind: ev.Kind, Err: err}
	w.metrics.EventFailed(ev.Kind.String())
	w.logger.Error("Event format damaged",
		log.Int64("t", ev.T),
		log.String("kind", ev.Kind.String()),
		log.String("params", string(ev.Params)),
		log.Error(err))

	what := "Play"
	if w.mode == ModeReplay {
		w.halted = true
		what = "Replay"
	}
	w.notifier.FatalError([]string{
		"An error occurred. " + what + " aborted.",
		"Check the client log for more detail.",
	})
	return malformed
}

// Clock is the local simulation clock in whole milliseconds.
func (w *Engine) Clock() int64 {
	return int64(math.Floor(w.clock))
}

// AdvanceClock moves the local clock forward by ms. Negative values are
// ignored; the clock never runs backwards.
func (w *Engine) AdvanceClock(ms float64) {
	if ms <= 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return
	}
	w.clock += ms
	w.metrics.ClockAdvanced(w.Clock())
}

func (w *Engine) Mode() Mode { return w.mode }

func (w *Engine) Rule() market.Rule { return w.rule }

// Frozen reports whether GameEnd has stopped the timeline.
func (w *Engine) Frozen() bool { return w.frozen }

// Halted reports whether a failed event stopped replay playback for good.
func (w *Engine) Halted() bool { return w.halted }

// Commands implements market.Host; outbound commands exist only in
// real-time mode.
func (w *Engine) Commands() (market.CommandSender, bool) {
	if w.mode != ModeRealTime || w.commands == nil {
		return nil, false
	}
	return w.commands, true
}

// Resize recomputes the world-to-pixel scale for a new viewport and asks
// the renderer to redraw every entity. Game state is untouched.
func (w *Engine) Resize(pixelWidth, pixelHeight float64) {
	w.pixelWidth, w.pixelHeight = pixelWidth, pixelHeight
	w.rescale()
	for _, e := range w.entities {
		w.renderer.GeometryChanged(e)
	}
}

func (w *Engine) rescale() {
	w.pixelScale = w.computeScale()
	w.renderer.WorldResized(w.pixelScale)
}

func (w *Engine) computeScale() float64 {
	if w.width <= 0 || w.height <= 0 || w.pixelWidth <= 0 || w.pixelHeight <= 0 {
		return 0
	}
	return math.Min(w.pixelWidth/w.width, w.pixelHeight/w.height)
}

// Size is the world size in game units.
func (w *Engine) Size() (width, height float64) {
	return w.width, w.height
}

// PixelScale is the number of pixels per game unit.
func (w *Engine) PixelScale() float64 {
	return w.pixelScale
}

func (w *Engine) Entity(uid models.UID) (*models.Entity, bool) {
	e, ok := w.entities[uid]
	return e, ok
}

// Player returns the roster entry for uid. Dead players stay in the roster.
func (w *Engine) Player(uid models.UID) (*models.Entity, bool) {
	p, ok := w.players[uid]
	return p, ok
}

// PlayerColor returns the player's colour as #rrggbb.
func (w *Engine) PlayerColor(uid models.UID) (string, bool) {
	p, ok := w.players[uid]
	if !ok {
		return "", false
	}
	return p.Player.Color.Hex(), true
}

// Players returns the roster in creation order.
func (w *Engine) Players() []*models.Entity {
	out := make([]*models.Entity, 0, len(w.rosterOrder))
	for _, uid := range w.rosterOrder {
		out = append(out, w.players[uid])
	}
	return out
}

// Roster returns the display view of the roster in creation order.
func (w *Engine) Roster() []models.RosterEntry {
	out := make([]models.RosterEntry, 0, len(w.rosterOrder))
	for _, uid := range w.rosterOrder {
		p := w.players[uid]
		out = append(out, models.RosterEntry{
			UID:      uid,
			Name:     p.Player.Owner,
			Color:    p.Player.Color.Hex(),
			Snapshot: p.Snapshot(),
		})
	}
	return out
}

// EntityCount is the number of live entities.
func (w *Engine) EntityCount() int {
	return len(w.entities)
}

// Tiles returns the map's recovery tiles, if the map carried any.
func (w *Engine) Tiles() []*models.Tile {
	return w.tiles
}

// Controlled returns this session's tank once it has been created.
func (w *Engine) Controlled() (*models.Entity, bool) {
	return w.controlled, w.controlled != nil
}

// OnControlledBound registers fn to run when this session's tank is bound.
// Real-time mode uses it to build the key map.
func (w *Engine) OnControlledBound(fn func(*models.Entity)) {
	w.onBound = append(w.onBound, fn)
}
