// Package input turns key and gamepad state into outbound command bodies
// such as "lTrack 0.750", "fire" or "market.bid 12".
package input

import (
	"strconv"

	"github.com/zeusync/tankclient/internal/core/models"
)

// Handler returns the commands produced by one key transition.
type Handler func() []string

// KeyMap holds any number of handlers per key code. Codes follow the DOM
// KeyboardEvent.code names ("KeyW", "Space", "ArrowLeft", ...).
type KeyMap struct {
	down map[string][]Handler
	up   map[string][]Handler
}

func NewKeyMap() *KeyMap {
	return &KeyMap{
		down: make(map[string][]Handler),
		up:   make(map[string][]Handler),
	}
}

func (k *KeyMap) OnDown(code string, h Handler) {
	k.down[code] = append(k.down[code], h)
}

func (k *KeyMap) OnUp(code string, h Handler) {
	k.up[code] = append(k.up[code], h)
}

// KeyDown runs every down handler of code, in registration order.
func (k *KeyMap) KeyDown(code string) []string {
	return run(k.down[code])
}

// KeyUp runs every up handler of code, in registration order.
func (k *KeyMap) KeyUp(code string) []string {
	return run(k.up[code])
}

func run(handlers []Handler) []string {
	var out []string
	for _, h := range handlers {
		out = append(out, h()...)
	}
	return out
}

// KeyBinding installs handlers for the controlled tank. The tank is read
// live, so stat updates apply to later key presses.
type KeyBinding func(km *KeyMap, tank *models.Entity)

// Commands.
const (
	CmdLeftTrack  = "lTrack"
	CmdRightTrack = "rTrack"
	CmdFire       = "fire"
)

// TrackCommand formats a track speed command with three decimals.
func TrackCommand(track string, speed float64) string {
	if speed == 0 {
		speed = 0 // drop the sign of negative zero
	}
	return track + " " + strconv.FormatFloat(speed, 'f', 3, 64)
}

func tankSpeed(tank *models.Entity) float64 {
	if tank == nil || tank.Player == nil {
		return 0
	}
	return tank.Player.Speed
}

func tankMoney(tank *models.Entity) float64 {
	if tank == nil || tank.Player == nil {
		return 0
	}
	return tank.Player.Money
}
