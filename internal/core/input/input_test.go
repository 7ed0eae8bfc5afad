package input

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/internal/core/market"
	"github.com/zeusync/tankclient/internal/core/models"
)

func tank(speed, money float64) *models.Entity {
	return models.NewPlayer(1, &models.Type{Name: "tank"}, 0, 0, 0, "alice", nil,
		models.PlayerDefaults{Money: money, Speed: speed, MaxHP: 10}, models.Color{})
}

func openAuction(t *testing.T, minBid float64) *market.Auction {
	t.Helper()
	a := market.NewAuction()
	ev, err := events.New(0, events.KindMarketUpdate, map[string]any{"toSell": []any{"speed", true, 2}, "minBid": minBid})
	require.NoError(t, err)
	require.NoError(t, a.ProcessEvent(nil, ev))
	return a
}

func TestTrackCommand(t *testing.T) {
	assert.Equal(t, "lTrack 0.750", TrackCommand(CmdLeftTrack, 0.75))
	assert.Equal(t, "rTrack -2.000", TrackCommand(CmdRightTrack, -2))
	assert.Equal(t, "rTrack 0.000", TrackCommand(CmdRightTrack, math.Copysign(0, -1)))
}

func TestKeyMapRunsHandlersInOrder(t *testing.T) {
	km := NewKeyMap()
	km.OnDown("KeyX", func() []string { return []string{"a"} })
	km.OnDown("KeyX", func() []string { return []string{"b", "c"} })

	assert.Equal(t, []string{"a", "b", "c"}, km.KeyDown("KeyX"))
	assert.Empty(t, km.KeyUp("KeyX"))
	assert.Empty(t, km.KeyDown("KeyY"))
}

func TestMovementKeys(t *testing.T) {
	km := NewKeyMap()
	MovementKeys(km, tank(2, 0))

	assert.Equal(t, []string{"lTrack 2.000", "rTrack 2.000"}, km.KeyDown(KeyUp))
	// W+A: left cancels out, right saturates
	assert.Equal(t, []string{"lTrack 0.000", "rTrack 2.000"}, km.KeyDown(KeyLeft))
	assert.Equal(t, []string{"lTrack 2.000", "rTrack 2.000"}, km.KeyUp(KeyLeft))
	assert.Equal(t, []string{"lTrack 0.000", "rTrack 0.000"}, km.KeyDown(KeyDown))
	assert.Equal(t, []string{"lTrack -2.000", "rTrack -2.000"}, km.KeyUp(KeyUp))
	assert.Equal(t, []string{"lTrack 0.000", "rTrack 0.000"}, km.KeyUp(KeyDown))
	assert.Equal(t, []string{"lTrack 2.000", "rTrack -2.000"}, km.KeyDown(KeyRight))
}

func TestMovementKeysReadLiveSpeed(t *testing.T) {
	tk := tank(1, 0)
	km := NewKeyMap()
	MovementKeys(km, tk)

	tk.Player.Speed = 3
	assert.Equal(t, []string{"lTrack 3.000", "rTrack 3.000"}, km.KeyDown(KeyUp))
}

func TestFireKeys(t *testing.T) {
	km := NewKeyMap()
	FireKeys(km, nil)
	assert.Equal(t, []string{CmdFire}, km.KeyDown(KeyFire))
	assert.Empty(t, km.KeyUp(KeyFire))
}

func TestAuctionKeys(t *testing.T) {
	a := openAuction(t, 5)
	tk := tank(1, 7)
	km := NewKeyMap()
	AuctionKeys(a)(km, tk)

	require.Equal(t, 5, a.MyBid())
	assert.Empty(t, km.KeyDown(KeyBidLower))
	assert.Equal(t, 5, a.MyBid(), "never below the minimum bid")

	km.KeyDown(KeyBidRaise)
	km.KeyDown(KeyBidRaise)
	km.KeyDown(KeyBidRaise)
	assert.Equal(t, 7, a.MyBid(), "never above the player's money")

	km.KeyDown(KeyBidLower)
	assert.Equal(t, []string{"market.bid 6"}, km.KeyDown(KeyBidSubmit))
}

func TestGamepadTracks(t *testing.T) {
	pad := Gamepad{
		Axes:    []float64{0, 0.5, 0, -1},
		Buttons: []Button{{Pressed: true, Value: 1}},
	}
	assert.Equal(t, []string{"lTrack 1.000", "rTrack -2.000", CmdFire}, GamepadTracks(pad, tank(2, 0)))

	assert.Equal(t, []string{"lTrack 0.000", "rTrack 0.000"}, GamepadTracks(Gamepad{}, tank(2, 0)))
}

func TestGamepadSteering(t *testing.T) {
	buttons := make([]Button, 7)
	buttons[ButtonLeftTrig] = Button{Value: 0.5}

	// stick pushed straight forward: both tracks at full curve
	pad := Gamepad{Axes: []float64{0, -1}, Buttons: buttons}
	cmds := GamepadSteering(pad, tank(2, 0))
	// sqrt(sqrt(2)/2) * 2 * 0.5
	assert.Equal(t, []string{"lTrack 0.841", "rTrack 0.841"}, cmds)

	// pushed right: the tracks turn against each other
	pad.Axes = []float64{1, 0}
	assert.Equal(t, []string{"lTrack 0.841", "rTrack -0.841"}, GamepadSteering(pad, tank(2, 0)))

	// no throttle, no movement
	pad.Buttons = nil
	assert.Equal(t, []string{"lTrack 0.000", "rTrack 0.000"}, GamepadSteering(pad, tank(2, 0)))
}

func TestResponseCurve(t *testing.T) {
	assert.InDelta(t, 0.5, responseCurve(0.25), 1e-9)
	assert.InDelta(t, -0.5, responseCurve(-0.25), 1e-9)
	assert.Zero(t, responseCurve(0))
}

func TestAuctionGamepad(t *testing.T) {
	a := openAuction(t, 3)
	tk := tank(1, 5)
	bind := AuctionGamepad(a)

	buttons := make([]Button, 16)
	buttons[ButtonDPadRight].Pressed = true
	pad := Gamepad{Buttons: buttons}

	for range 3 {
		assert.Empty(t, bind(pad, tk))
	}
	assert.Equal(t, 5, a.MyBid(), "capped at the player's money")

	buttons[ButtonDPadRight].Pressed = false
	buttons[ButtonDPadLeft].Pressed = true
	for range 3 {
		bind(pad, tk)
	}
	assert.Equal(t, 4, a.MyBid(), "the d-pad keeps one above the minimum")

	buttons[ButtonDPadLeft].Pressed = false
	buttons[ButtonB].Pressed = true
	assert.Equal(t, []string{"market.bid 4"}, bind(pad, tk))
}

func TestDefaultLayout(t *testing.T) {
	none := DefaultLayout(true, 0, market.None{})
	assert.Len(t, none.Keys, 2)
	assert.Empty(t, none.Gamepads)

	a := openAuction(t, 1)
	l := DefaultLayout(true, 2, a)
	assert.Len(t, l.Keys, 3)
	assert.Len(t, l.Gamepads, 2)

	c := l.Bind(tank(1, 10))
	assert.Equal(t, []string{CmdFire}, c.KeyDown(KeyFire))
	assert.Equal(t, []string{"lTrack 1.000", "rTrack 1.000"}, c.KeyDown(KeyUp))
	assert.Equal(t, []string{"lTrack 0.000", "rTrack 0.000"}, c.KeyUp(KeyUp))
	assert.Equal(t, []string{"market.bid 1"}, c.KeyDown(KeyBidSubmit))

	pad := Gamepad{Buttons: []Button{{Pressed: true}}}
	assert.Equal(t, []string{"lTrack 0.000", "rTrack 0.000", CmdFire}, c.Gamepad(pad))

	padOnly := DefaultLayout(false, 1, a)
	assert.Empty(t, padOnly.Keys)
	assert.Len(t, padOnly.Gamepads, 2)
}
