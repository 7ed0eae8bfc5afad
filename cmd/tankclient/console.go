package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zeusync/tankclient/internal/core/observability/log"
	"github.com/zeusync/tankclient/internal/core/session"
)

var errUnknownCommand = errors.New("unknown console command")

// Console turns stdin lines into session input, standing in for a
// keyboard in headless runs:
//
//	+KeyW / -KeyW    key down / key up
//	bid 12           submit an auction bid
//	pause / resume   replay playback
//	speed -2         replay speed exponent
type Console struct {
	session *session.Session
	logger  log.Log
}

func (c *Console) Run(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := c.Handle(line); err != nil {
			c.logger.Warn("Console command failed", log.String("line", line), log.Error(err))
		}
	}
}

func (c *Console) Handle(line string) error {
	switch {
	case strings.HasPrefix(line, "+"):
		return c.session.KeyDown(line[1:])
	case strings.HasPrefix(line, "-"):
		return c.session.KeyUp(line[1:])
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "bid":
		n, err := intArg(fields)
		if err != nil {
			return err
		}
		return c.session.SubmitBid(n)
	case "pause":
		return c.session.Pause()
	case "resume":
		return c.session.Resume()
	case "speed":
		n, err := intArg(fields)
		if err != nil {
			return err
		}
		exp, err := c.session.SetSpeed(n)
		if err != nil {
			return err
		}
		if exp != n {
			c.logger.Info("Speed clamped", log.Int("exponent", exp))
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, fields[0])
	}
}

func intArg(fields []string) (int, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("%s takes one integer argument", fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fields[0], err)
	}
	return n, nil
}
