package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tankclient/internal/config"
	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/internal/core/observability/log"
	"github.com/zeusync/tankclient/internal/core/session"
	"github.com/zeusync/tankclient/internal/core/timeline"
)

func TestParseFlagsOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: replay\nreplay:\n  file: a.json\n  speed_exponent: 1\n"), 0o644))

	cfg, err := parseFlags([]string{"-config", path, "-speed", "-3", "-log-level", "debug"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, config.ModeReplay, cfg.Mode)
	assert.Equal(t, "a.json", cfg.Replay.File)
	assert.Equal(t, -3, cfg.Replay.SpeedExponent)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParseFlagsNamelessPlayerObserves(t *testing.T) {
	cfg, err := parseFlags([]string{"-host", "game.local", "-port", "9000"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, config.ModeObserve, cfg.Mode)
	assert.Equal(t, "ws://game.local:9000", cfg.Server.URL())

	cfg, err = parseFlags([]string{"-name", "alice"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, config.ModePlay, cfg.Mode)
}

func TestParseFlagsRejects(t *testing.T) {
	_, err := parseFlags([]string{"-mode", "replay"}, io.Discard)
	assert.ErrorIs(t, err, config.ErrMissingReplay)

	_, err = parseFlags([]string{"-speed", "12", "-mode", "replay", "-replay", "x"}, io.Discard)
	assert.ErrorIs(t, err, config.ErrInvalidSpeed)

	_, err = parseFlags([]string{"-nope"}, io.Discard)
	assert.Error(t, err)
}

func replaySession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.NewReplay(events.Init{PricingRule: "None"}, timeline.NewReplay(nil), session.Options{})
	require.NoError(t, err)
	return s
}

func TestConsoleReplayCommands(t *testing.T) {
	s := replaySession(t)
	c := &Console{session: s, logger: log.NewNop()}

	require.NoError(t, c.Handle("pause"))
	assert.True(t, s.Paused())
	require.NoError(t, c.Handle("resume"))
	assert.False(t, s.Paused())

	require.NoError(t, c.Handle("speed 20"))
	assert.Equal(t, config.MaxSpeedExponent, s.SpeedExponent())

	assert.Error(t, c.Handle("speed fast"))
	assert.Error(t, c.Handle("speed"))
	assert.ErrorIs(t, c.Handle("dance"), errUnknownCommand)
	assert.ErrorIs(t, c.Handle("+KeyW"), session.ErrNotRealTime)
	assert.ErrorIs(t, c.Handle("bid 3"), session.ErrNoAuction)
}

func TestConsoleRunSkipsBlankLines(t *testing.T) {
	s := replaySession(t)
	c := &Console{session: s, logger: log.NewNop()}

	r, w := io.Pipe()
	done := make(chan struct{})
	go func() {
		c.Run(context.Background(), r)
		close(done)
	}()
	_, err := io.WriteString(w, "\n  \npause\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("console did not stop at end of input")
	}
	assert.True(t, s.Paused())
}

func TestTickLoopStopsWhenReplayEnds(t *testing.T) {
	ev, err := events.New(0, events.KindGameEnd, map[string]any{"rank": []int{}})
	require.NoError(t, err)
	s, err := session.NewReplay(events.Init{}, timeline.NewReplay([]events.Event{ev}), session.Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = tickLoop(ctx, s, time.Millisecond, log.NewNop())
	assert.ErrorIs(t, err, errFinished)
	assert.True(t, s.Engine().Frozen())
}
