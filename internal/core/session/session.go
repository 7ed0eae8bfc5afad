// Package session wires a timeline, the world engine and the input layer
// into one of the three play modes, and drives them from the render tick.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/zeusync/tankclient/internal/config"
	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/internal/core/input"
	"github.com/zeusync/tankclient/internal/core/market"
	"github.com/zeusync/tankclient/internal/core/models"
	"github.com/zeusync/tankclient/internal/core/observability/log"
	"github.com/zeusync/tankclient/internal/core/observability/metrics"
	"github.com/zeusync/tankclient/internal/core/timeline"
	"github.com/zeusync/tankclient/internal/core/world"
)

// Outbound sends one text frame to the server.
type Outbound interface {
	SendText(text string) error
}

// Stream is a live connection after the handshake: Run blocks delivering
// inbound frames until the connection fails or ctx ends.
type Stream interface {
	Outbound
	Run(ctx context.Context, handle func(data []byte)) error
}

// Options carries the collaborators shared by every mode.
type Options struct {
	Types    world.TypeCatalog
	Renderer world.Renderer
	Notifier world.Notifier
	Colors   *models.ColorAllocator
	Logger   log.Log
	Metrics  metrics.Recorder

	PixelWidth  float64
	PixelHeight float64

	// Real-time input.
	Keyboard    bool
	GamepadMode int
	Gamepads    input.GamepadSource

	// Replay playback.
	SpeedExponent int
	StartPaused   bool
}

// Session is one running game. All methods are safe to call from several
// goroutines; they are serialized so the engine keeps a single writer.
type Session struct {
	mu sync.Mutex

	mode     world.Mode
	engine   *world.Engine
	live     *timeline.Live
	replay   *timeline.Replay
	notifier world.Notifier
	logger   log.Log
	metrics  metrics.Recorder

	layout   input.Layout
	controls *input.Controls
	gamepads input.GamepadSource

	paused   bool
	speedExp int
}

// NewRealTime starts a playing session. name owns the controlled tank and
// out carries its commands.
func NewRealTime(boot events.Init, name string, out Outbound, opts Options) (*Session, error) {
	s, rule, err := newSession(world.ModeRealTime, boot, name, opts)
	if err != nil {
		return nil, err
	}
	sender := &commandSender{out: out, clock: func() int64 { return s.engine.Clock() }, metrics: s.metrics}
	s.engine = s.newEngine(s.live, rule, boot, name, sender, opts)
	s.layout = input.DefaultLayout(opts.Keyboard, opts.GamepadMode, s.engine.Rule())
	s.gamepads = opts.Gamepads
	s.engine.OnControlledBound(func(tank *models.Entity) {
		s.controls = s.layout.Bind(tank)
		s.logger.Info("Controlled tank bound", log.Int64("uid", int64(tank.UID)))
	})
	return s, nil
}

// NewObserver starts a session that follows the live stream without a tank.
func NewObserver(boot events.Init, opts Options) (*Session, error) {
	s, rule, err := newSession(world.ModeObserver, boot, "", opts)
	if err != nil {
		return nil, err
	}
	s.engine = s.newEngine(s.live, rule, boot, "", nil, opts)
	return s, nil
}

// NewReplay plays back a recorded timeline under local clock control.
func NewReplay(boot events.Init, tl *timeline.Replay, opts Options) (*Session, error) {
	s, rule, err := newSession(world.ModeReplay, boot, "", opts)
	if err != nil {
		return nil, err
	}
	s.live = nil
	s.replay = tl
	s.paused = opts.StartPaused
	s.speedExp = clampSpeed(opts.SpeedExponent)
	s.engine = s.newEngine(tl, rule, boot, "", nil, opts)
	return s, nil
}

func newSession(mode world.Mode, boot events.Init, name string, opts Options) (*Session, market.Rule, error) {
	s := &Session{
		mode:     mode,
		live:     timeline.NewLive(),
		notifier: opts.Notifier,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	if s.notifier == nil {
		s.notifier = world.NopNotifier{}
	}
	if s.logger == nil {
		s.logger = log.NewNop()
	}
	s.logger = s.logger.With(log.String("component", "session"), log.String("mode", mode.String()))
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	rule, err := market.Lookup(boot.PricingRule)
	if err != nil {
		return nil, nil, fmt.Errorf("start %s session: %w", mode, err)
	}
	s.logger.Info("Session created",
		log.String("pricing_rule", rule.Name()),
		log.String("player", name))
	return s, rule, nil
}

func (s *Session) newEngine(tl timeline.Timeline, rule market.Rule, boot events.Init, name string, sender *commandSender, opts Options) *world.Engine {
	o := world.Options{
		Mode:        s.mode,
		PlayerName:  name,
		Defaults:    boot.Player,
		PixelWidth:  opts.PixelWidth,
		PixelHeight: opts.PixelHeight,
		Rule:        rule,
		Types:       opts.Types,
		Renderer:    opts.Renderer,
		Notifier:    s.notifier,
		Colors:      opts.Colors,
		Logger:      opts.Logger,
		Metrics:     s.metrics,
	}
	// A typed nil would make Commands report ok.
	if sender != nil {
		o.Commands = sender
	}
	return world.New(tl, o)
}

func (s *Session) Mode() world.Mode { return s.mode }

// Engine exposes the world for read-only consumers such as a renderer.
// Callers must not use it concurrently with Tick.
func (s *Session) Engine() *world.Engine { return s.engine }

// Tick runs one render tick: apply due events, poll the gamepad in
// real-time mode, then advance the local clock by elapsed scaled by the
// playback speed.
func (s *Session) Tick(elapsed time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.engine.AdvanceTo(s.engine.Clock())
	if s.mode == world.ModeRealTime {
		if perr := s.pollGamepads(); perr != nil {
			err = errors.Join(err, perr)
		}
	}
	if !s.paused {
		s.engine.AdvanceClock(float64(elapsed) / float64(time.Millisecond) * s.speed())
	}
	return err
}

func (s *Session) pollGamepads() error {
	if s.controls == nil || s.gamepads == nil {
		return nil
	}
	pad, ok := s.gamepads.Poll()
	if !ok {
		return nil
	}
	return s.send(s.controls.Gamepad(pad))
}

// speed is the clock multiplier. Only replays run at other than 1.
func (s *Session) speed() float64 {
	if s.mode != world.ModeReplay {
		return 1
	}
	return math.Ldexp(1, s.speedExp)
}

// HandleMessage decodes one inbound frame onto the live timeline. It only
// enqueues, so it is safe to call from the socket reader. Kinds the client
// does not know are dropped.
func (s *Session) HandleMessage(data []byte) {
	if s.live == nil {
		return
	}
	ev, err := events.Decode(data)
	if err != nil {
		var unknown *events.UnknownEventKindError
		if errors.As(err, &unknown) {
			s.logger.Debug("Ignoring event", log.String("type", unknown.Type), log.Int64("t", unknown.T))
			s.metrics.EventIgnored(unknown.Type)
			return
		}
		s.logger.Warn("Dropping undecodable frame", log.Error(err), log.Int("bytes", len(data)))
		return
	}
	s.live.Push(ev)
}

// Serve feeds the session from stream until it closes. Frames still queued
// when the stream closes are applied first; a close after GameEnd ends the
// session normally. Any other close is fatal: the notifier is told and the
// error returned; there is no reconnect.
func (s *Session) Serve(ctx context.Context, stream Stream) error {
	err := stream.Run(ctx, s.HandleMessage)
	if err == nil || ctx.Err() != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// failures here were already reported through the notifier
	_ = s.engine.AdvanceTo(s.engine.Clock())
	if s.engine.Frozen() {
		s.logger.Info("Server closed the connection after game end", log.String("reason", err.Error()))
		return nil
	}

	s.logger.Error("Connection lost", log.Error(err))
	s.notifier.FatalError([]string{
		"Connection to the server was lost.",
		err.Error(),
	})
	return err
}

// KeyDown forwards a key press to the controls bound to this session's tank.
func (s *Session) KeyDown(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inputReady(); err != nil {
		return err
	}
	return s.send(s.controls.KeyDown(code))
}

// KeyUp forwards a key release.
func (s *Session) KeyUp(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inputReady(); err != nil {
		return err
	}
	return s.send(s.controls.KeyUp(code))
}

func (s *Session) inputReady() error {
	if s.mode != world.ModeRealTime {
		return ErrNotRealTime
	}
	if s.controls == nil {
		return ErrNoTank
	}
	return nil
}

// SubmitBid sends a bid of amount in the running auction.
func (s *Session) SubmitBid(amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	auction, ok := s.engine.Rule().(*market.Auction)
	if !ok {
		return ErrNoAuction
	}
	return auction.SubmitBid(amount)
}

func (s *Session) send(cmds []string) error {
	sender, ok := s.engine.Commands()
	if !ok {
		return nil
	}
	var errs []error
	for _, cmd := range cmds {
		if err := sender.Send(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pause stops the replay clock. Events already applied stay applied.
func (s *Session) Pause() error {
	return s.setPaused(true)
}

func (s *Session) Resume() error {
	return s.setPaused(false)
}

func (s *Session) setPaused(paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != world.ModeReplay {
		return ErrNotReplay
	}
	s.paused = paused
	s.logger.Info("Playback state changed", log.Bool("paused", paused))
	return nil
}

func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SetSpeed sets the replay speed to 2^exp, clamped to the supported range.
// It returns the exponent in effect.
func (s *Session) SetSpeed(exp int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != world.ModeReplay {
		return 0, ErrNotReplay
	}
	s.speedExp = clampSpeed(exp)
	s.logger.Info("Playback speed changed", log.Int("exponent", s.speedExp))
	return s.speedExp, nil
}

func (s *Session) SpeedExponent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speedExp
}

func clampSpeed(exp int) int {
	return max(-config.MaxSpeedExponent, min(config.MaxSpeedExponent, exp))
}

// Progress is the local clock and, for replays, the last event time.
func (s *Session) Progress() (clock, end int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replay != nil {
		end = s.replay.MaxTime()
	}
	return s.engine.Clock(), end
}

// Done reports whether nothing more can happen: the game ended, a replay
// halted on a bad event, or a replay ran out of events.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine.Frozen() || s.engine.Halted() {
		return true
	}
	return s.replay != nil && s.replay.Empty()
}

// commandSender stamps each command with the local clock, "<t> <body>".
type commandSender struct {
	out     Outbound
	clock   func() int64
	metrics metrics.Recorder
}

func (c *commandSender) Send(body string) error {
	if err := c.out.SendText(strconv.FormatInt(c.clock(), 10) + " " + body); err != nil {
		return fmt.Errorf("send %q: %w", body, err)
	}
	c.metrics.CommandSent()
	return nil
}
