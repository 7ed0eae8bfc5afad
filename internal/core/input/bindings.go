package input

import (
	"math"

	"github.com/zeusync/tankclient/internal/core/market"
	"github.com/zeusync/tankclient/internal/core/models"
)

// Standard-mapping gamepad indices.
const (
	AxisLeftX  = 0
	AxisLeftY  = 1
	AxisRightY = 3

	ButtonA         = 0
	ButtonB         = 1
	ButtonLeftTrig  = 6
	ButtonDPadLeft  = 14
	ButtonDPadRight = 15
)

// Key codes used by the default bindings.
const (
	KeyUp    = "KeyW"
	KeyLeft  = "KeyA"
	KeyDown  = "KeyS"
	KeyRight = "KeyD"
	KeyFire  = "Space"

	KeyBidLower  = "ArrowLeft"
	KeyBidRaise  = "ArrowRight"
	KeyBidSubmit = "Enter"
)

// MovementKeys drives both tracks from WASD. Each pressed key adds its
// contribution; the sums are clamped to [-1,1] and scaled by tank speed.
func MovementKeys(km *KeyMap, tank *models.Entity) {
	var pressed [4]bool
	// left and right track contribution of W, A, S, D
	contrib := [4][2]float64{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}

	movement := func() []string {
		var vl, vr float64
		for i, p := range pressed {
			if p {
				vl += contrib[i][0]
				vr += contrib[i][1]
			}
		}
		speed := tankSpeed(tank)
		return []string{
			TrackCommand(CmdLeftTrack, clamp(vl, -1, 1)*speed),
			TrackCommand(CmdRightTrack, clamp(vr, -1, 1)*speed),
		}
	}

	for i, code := range []string{KeyUp, KeyLeft, KeyDown, KeyRight} {
		km.OnDown(code, func() []string {
			pressed[i] = true
			return movement()
		})
		km.OnUp(code, func() []string {
			pressed[i] = false
			return movement()
		})
	}
}

// FireKeys fires on Space.
func FireKeys(km *KeyMap, _ *models.Entity) {
	km.OnDown(KeyFire, func() []string { return []string{CmdFire} })
}

// AuctionKeys adjusts the pending bid with the arrow keys and submits it
// with Enter.
func AuctionKeys(rule *market.Auction) KeyBinding {
	return func(km *KeyMap, tank *models.Entity) {
		km.OnDown(KeyBidLower, func() []string {
			rule.LowerBid(rule.State().MinBid)
			return nil
		})
		km.OnDown(KeyBidRaise, func() []string {
			rule.RaiseBid(tankMoney(tank))
			return nil
		})
		km.OnDown(KeyBidSubmit, func() []string {
			return []string{market.BidCommand(rule.MyBid())}
		})
	}
}

// GamepadTracks is gamepad mode 1: the two vertical sticks drive the
// tracks and A fires.
func GamepadTracks(pad Gamepad, tank *models.Entity) []string {
	speed := tankSpeed(tank)
	cmds := []string{
		TrackCommand(CmdLeftTrack, speed*pad.Axis(AxisLeftY)),
		TrackCommand(CmdRightTrack, speed*pad.Axis(AxisRightY)),
	}
	if pad.Button(ButtonA).Pressed {
		cmds = append(cmds, CmdFire)
	}
	return cmds
}

// GamepadSteering is gamepad mode 2: the left stick points the tank, the
// left trigger sets the throttle and A fires.
func GamepadSteering(pad Gamepad, tank *models.Entity) []string {
	dirX, dirY := pad.Axis(AxisLeftX), pad.Axis(AxisLeftY)
	throttle := pad.Button(ButtonLeftTrig).Value
	left := responseCurve((dirX - dirY) * math.Sqrt2 / 2)
	right := responseCurve((-dirX - dirY) * math.Sqrt2 / 2)

	speed := tankSpeed(tank)
	cmds := []string{
		TrackCommand(CmdLeftTrack, left*speed*throttle),
		TrackCommand(CmdRightTrack, right*speed*throttle),
	}
	if pad.Button(ButtonA).Pressed {
		cmds = append(cmds, CmdFire)
	}
	return cmds
}

// AuctionGamepad adjusts the pending bid with the d-pad and submits it
// with B.
func AuctionGamepad(rule *market.Auction) GamepadBinding {
	return func(pad Gamepad, tank *models.Entity) []string {
		if pad.Button(ButtonDPadRight).Pressed {
			rule.RaiseBid(tankMoney(tank))
		}
		if pad.Button(ButtonDPadLeft).Pressed {
			rule.LowerBid(rule.State().MinBid + 1)
		}
		if pad.Button(ButtonB).Pressed {
			return []string{market.BidCommand(rule.MyBid())}
		}
		return nil
	}
}

// responseCurve softens small stick deflections: sign(x)*sqrt(|x|).
func responseCurve(x float64) float64 {
	switch {
	case x > 0:
		return math.Sqrt(x)
	case x < 0:
		return -math.Sqrt(-x)
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
