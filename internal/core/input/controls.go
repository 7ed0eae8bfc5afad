package input

import (
	"github.com/zeusync/tankclient/internal/core/market"
	"github.com/zeusync/tankclient/internal/core/models"
)

// Layout is the set of bindings a real-time session installs once its tank
// is known.
type Layout struct {
	Keys     []KeyBinding
	Gamepads []GamepadBinding
}

// DefaultLayout returns the keyboard bindings when keyboard is set and the
// gamepad binding for gamepadMode (0 disables the pad). The pricing rule
// contributes its own bindings.
func DefaultLayout(keyboard bool, gamepadMode int, rule market.Rule) Layout {
	var l Layout
	if keyboard {
		l.Keys = append(l.Keys, MovementKeys, FireKeys)
	}
	switch gamepadMode {
	case 1:
		l.Gamepads = append(l.Gamepads, GamepadTracks)
	case 2:
		l.Gamepads = append(l.Gamepads, GamepadSteering)
	}
	if auction, ok := rule.(*market.Auction); ok {
		if keyboard {
			l.Keys = append(l.Keys, AuctionKeys(auction))
		}
		if gamepadMode != 0 {
			l.Gamepads = append(l.Gamepads, AuctionGamepad(auction))
		}
	}
	return l
}

// Controls are the bindings of a layout attached to the controlled tank.
type Controls struct {
	tank     *models.Entity
	keys     *KeyMap
	gamepads []GamepadBinding
}

func (l Layout) Bind(tank *models.Entity) *Controls {
	km := NewKeyMap()
	for _, b := range l.Keys {
		b(km, tank)
	}
	return &Controls{tank: tank, keys: km, gamepads: l.Gamepads}
}

func (c *Controls) KeyDown(code string) []string {
	return c.keys.KeyDown(code)
}

func (c *Controls) KeyUp(code string) []string {
	return c.keys.KeyUp(code)
}

// Gamepad evaluates every gamepad binding against pad.
func (c *Controls) Gamepad(pad Gamepad) []string {
	var out []string
	for _, b := range c.gamepads {
		out = append(out, b(pad, c.tank)...)
	}
	return out
}
