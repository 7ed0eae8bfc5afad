package input

import "github.com/zeusync/tankclient/internal/core/models"

// Button is the state of one gamepad button; Value is the analogue travel
// in [0,1] for triggers.
type Button struct {
	Pressed bool
	Value   float64
}

// Gamepad is one polled gamepad state using the standard mapping.
type Gamepad struct {
	Axes    []float64
	Buttons []Button
}

// Axis returns axis i, or 0 when the pad has no such axis.
func (g Gamepad) Axis(i int) float64 {
	if i < 0 || i >= len(g.Axes) {
		return 0
	}
	return g.Axes[i]
}

// Button returns button i, or a released button when absent.
func (g Gamepad) Button(i int) Button {
	if i < 0 || i >= len(g.Buttons) {
		return Button{}
	}
	return g.Buttons[i]
}

// GamepadSource is polled once per tick; ok is false while no pad is
// connected.
type GamepadSource interface {
	Poll() (pad Gamepad, ok bool)
}

// GamepadBinding derives commands from the current pad state.
type GamepadBinding func(pad Gamepad, tank *models.Entity) []string
