// Package market implements the pricing rules that interpret MarketUpdate
// events.
package market

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/internal/core/models"
)

var (
	ErrUnknownRule = errors.New("unknown pricing rule")
	ErrNotRealTime = errors.New("bids can only be sent in real-time mode")
)

// CommandSender sends one outbound command body; the sender stamps it with
// the local clock.
type CommandSender interface {
	Send(body string) error
}

// Host is the part of the world a rule may read.
type Host interface {
	// Clock is the local simulation clock in milliseconds.
	Clock() int64
	Player(uid models.UID) (*models.Entity, bool)
	// Commands returns the outbound path; ok is false outside real-time mode.
	Commands() (sender CommandSender, ok bool)
}

// Rule is a pluggable market handler.
type Rule interface {
	Name() string
	// Init is called once after the session mode is known.
	Init(host Host)
	ProcessEvent(host Host, ev events.Event) error
}

// Lookup returns a fresh rule instance for the name announced by the Init
// record. Names are matched case-insensitively.
func Lookup(name string) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "":
		return None{}, nil
	case "auction":
		return NewAuction(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}
}

// None ignores market events.
type None struct{}

func (None) Name() string                          { return "None" }
func (None) Init(Host)                             {}
func (None) ProcessEvent(Host, events.Event) error { return nil }
