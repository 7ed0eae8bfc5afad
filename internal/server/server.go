// Package server is a development relay: it streams a recorded game to
// websocket clients with the recorded timing, so the live client modes can
// be exercised without a game server.
package server

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/internal/core/observability/log"
	"github.com/zeusync/tankclient/internal/core/timeline"
)

// Config holds relay configuration
type Config struct {
	ListenAddr string
	Path       string
	MaxClients int

	// SpeedExponent plays the recording at 2^SpeedExponent real time.
	SpeedExponent int

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// DefaultServerConfig returns default relay configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:       "127.0.0.1:8080",
		Path:             "/",
		MaxClients:       64,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

// Stats are cumulative relay counters.
type Stats struct {
	ClientsServed    int64
	ClientsActive    int64
	EventsSent       int64
	CommandsReceived int64
}

// Server relays one recording to every client that connects. Each client
// gets its own copy of the stream starting from the first event.
type Server struct {
	config Config
	boot   events.Init
	replay *timeline.Replay
	logger log.Log

	httpServer *http.Server
	wg         sync.WaitGroup

	running int32 // atomic bool
	closed  int32 // atomic bool

	served   atomic.Int64
	active   atomic.Int64
	sent     atomic.Int64
	commands atomic.Int64
}

// NewServer creates a relay for the recording boot + replay.
func NewServer(config Config, boot events.Init, replay *timeline.Replay, logger log.Log) (*Server, error) {
	if replay == nil || replay.Total() == 0 {
		return nil, ErrEmptyReplay
	}
	if logger == nil {
		logger = log.NewNop()
	}
	if config.Path == "" {
		config.Path = "/"
	}

	s := &Server{
		config: config,
		boot:   boot,
		replay: replay,
		logger: logger.With(log.String("component", "relay")),
	}

	s.logger.Info("Relay created",
		log.String("listen_addr", config.ListenAddr),
		log.Int("events", replay.Total()),
		log.Int64("duration_ms", replay.MaxTime()))

	return s, nil
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return err
	}

	s.httpServer = &http.Server{
		Handler:     s,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Relay stopped serving", log.Error(err))
		}
	}()

	s.logger.Info("Relay listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Stop shuts the listener down and waits for open streams to finish.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return ErrServerClosed
	}
	if atomic.LoadInt32(&s.running) == 0 {
		return nil
	}

	s.logger.Info("Stopping relay")
	err := s.httpServer.Shutdown(ctx)
	s.wg.Wait()
	return err
}

func (s *Server) Stats() Stats {
	return Stats{
		ClientsServed:    s.served.Load(),
		ClientsActive:    s.active.Load(),
		EventsSent:       s.sent.Load(),
		CommandsReceived: s.commands.Load(),
	}
}

// delay converts a recording timestamp into wall time since stream start.
func (s *Server) delay(t int64) time.Duration {
	ms := float64(t) / math.Ldexp(1, s.config.SpeedExponent)
	return time.Duration(ms * float64(time.Millisecond))
}
