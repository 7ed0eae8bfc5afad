// Command tankclient is a headless tank game client. It plays or watches a
// live game over websocket, plays back a recorded game, or serves a
// recording to other clients.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/tankclient/internal/config"
	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/internal/core/market"
	"github.com/zeusync/tankclient/internal/core/models"
	"github.com/zeusync/tankclient/internal/core/notify"
	"github.com/zeusync/tankclient/internal/core/observability/log"
	"github.com/zeusync/tankclient/internal/core/protocol/websocket"
	"github.com/zeusync/tankclient/internal/core/replay"
	"github.com/zeusync/tankclient/internal/core/session"
	"github.com/zeusync/tankclient/internal/injector"
	"github.com/zeusync/tankclient/internal/server"
)

// errFinished ends the errgroup once the session has nothing left to do.
var errFinished = errors.New("session finished")

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tankclient:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "tankclient:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	rt, err := injector.InitializeRuntime(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Logger.Sync() }()

	sessionID := uuid.NewString()
	logger := rt.Logger.With(log.String("session_id", sessionID))

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Metrics.Addr != "" {
		serveMetrics(ctx, g, cfg.Metrics.Addr, rt.Metrics.Handler(), logger)
	}

	if cfg.Mode == config.ModeServe {
		g.Go(func() error { return serveReplay(ctx, cfg, logger) })
		return wait(g)
	}

	ui, err := notify.SubscribeLog(rt.Bus, logger)
	if err != nil {
		return err
	}
	defer ui.Close()

	opts := session.Options{
		Types:         rt.Catalog,
		Renderer:      notify.NewLogRenderer(logger),
		Notifier:      rt.Notifier,
		Colors:        models.NewColorAllocator(models.SeedFromString(sessionID)),
		Logger:        logger,
		Metrics:       rt.Metrics,
		PixelWidth:    cfg.Display.Width,
		PixelHeight:   cfg.Display.Height,
		Keyboard:      cfg.Bindings.Keyboard,
		GamepadMode:   cfg.Bindings.GamepadMode,
		SpeedExponent: cfg.Replay.SpeedExponent,
		StartPaused:   cfg.Replay.StartPaused,
	}

	var s *session.Session
	switch cfg.Mode {
	case config.ModeReplay:
		boot, tl, err := replay.Loader{Logger: logger, Metrics: rt.Metrics}.Open(cfg.Replay.File)
		if err != nil {
			return err
		}
		if s, err = session.NewReplay(boot, tl, opts); err != nil {
			return err
		}
	default:
		conn, boot, err := connect(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer conn.Close()

		if cfg.Mode == config.ModePlay {
			s, err = session.NewRealTime(boot, cfg.Player.Name, conn, opts)
		} else {
			s, err = session.NewObserver(boot, opts)
		}
		if err != nil {
			return err
		}
		g.Go(func() error { return s.Serve(ctx, conn) })
	}

	if auction, ok := s.Engine().Rule().(*market.Auction); ok {
		rt.Notifier.WatchAuction(auction)
	}

	// Scanner reads cannot be interrupted, so the console stays outside the
	// group and dies with the process.
	console := &Console{session: s, logger: logger.With(log.String("component", "console"))}
	go console.Run(ctx, os.Stdin)

	g.Go(func() error { return tickLoop(ctx, s, cfg.Tick.Interval, logger) })
	return wait(g)
}

func wait(g *errgroup.Group) error {
	if err := g.Wait(); err != nil && !errors.Is(err, errFinished) && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func connect(ctx context.Context, cfg config.Config, logger log.Log) (*websocket.Connection, events.Init, error) {
	wsCfg := websocket.DefaultConfig()
	wsCfg.URL = cfg.Server.URL()
	wsCfg.SocketTimeout = cfg.Server.SocketTimeout

	conn, err := websocket.Dial(ctx, wsCfg, logger)
	if err != nil {
		return nil, events.Init{}, err
	}
	name := cfg.Player.Name
	if cfg.Mode == config.ModeObserve {
		name = ""
	}
	boot, err := conn.Handshake(name)
	if err != nil {
		_ = conn.Close()
		return nil, events.Init{}, err
	}
	return conn, boot, nil
}

// tickLoop drives the session at interval, passing the measured elapsed
// time so a late tick catches up.
func tickLoop(ctx context.Context, s *session.Session, interval time.Duration, logger log.Log) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := s.Tick(now.Sub(last)); err != nil {
				logger.Warn("Tick failed", log.Error(err))
			}
			last = now
			if s.Done() {
				clock, end := s.Progress()
				logger.Info("Session finished", log.Int64("clock_ms", clock), log.Int64("end_ms", end))
				return errFinished
			}
		}
	}
}

func serveReplay(ctx context.Context, cfg config.Config, logger log.Log) error {
	boot, tl, err := replay.Loader{Logger: logger}.Open(cfg.Replay.File)
	if err != nil {
		return err
	}

	relayCfg := server.DefaultServerConfig()
	relayCfg.ListenAddr = net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	if cfg.Server.Path != "" {
		relayCfg.Path = cfg.Server.Path
	}
	relayCfg.SpeedExponent = cfg.Replay.SpeedExponent
	relayCfg.HandshakeTimeout = cfg.Server.SocketTimeout

	relay, err := server.NewServer(relayCfg, boot, tl, logger)
	if err != nil {
		return err
	}
	if err := relay.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return relay.Stop(shutdownCtx)
}

func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, handler http.Handler, logger log.Log) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		logger.Info("Serving metrics", log.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
