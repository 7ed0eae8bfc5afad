package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestEntityPatchMergesPresentFieldsOnly(t *testing.T) {
	e := NewEntity(1, &Type{Group: "bullet", Width: 1, Height: 1}, 1, 2, 0.3, 0, 0)
	e.HasHP, e.HP = true, 10

	e.Apply(EntityPatch{HP: f(5)})

	assert.Equal(t, 1.0, e.X)
	assert.Equal(t, 2.0, e.Y)
	assert.Equal(t, 0.3, e.Rad)
	assert.Equal(t, 5.0, e.HP)
}

func TestNewEntityDefaultsFromType(t *testing.T) {
	typ := &Type{Group: "block", Width: 2, Height: 3, HP: f(40)}
	e := NewEntity(7, typ, 0, 0, 0, 0, 0)
	assert.Equal(t, 2.0, e.Width)
	assert.Equal(t, 3.0, e.Height)
	assert.True(t, e.HasHP)
	assert.Equal(t, 40.0, e.MaxHP)
	assert.Equal(t, 40.0, e.HP)
	assert.True(t, e.Visible())
	assert.False(t, e.IsPlayer())

	sized := NewEntity(8, typ, 0, 0, 0, 0.5, 0.25)
	assert.Equal(t, 0.5, sized.Width)
	assert.Equal(t, 0.25, sized.Height)
}

func TestSetVisibleReportsChangesOnly(t *testing.T) {
	e := NewEntity(1, nil, 0, 0, 0, 1, 1)
	assert.False(t, e.SetVisible(true))
	assert.True(t, e.SetVisible(false))
	assert.False(t, e.SetVisible(false))
	assert.True(t, e.SetVisible(true))
}

func TestDistanceTo(t *testing.T) {
	a := NewEntity(1, nil, 0, 0, 0, 1, 1)
	b := NewEntity(2, nil, 3, 4, 0, 1, 1)
	assert.InDelta(t, 5.0, a.DistanceTo(b), 1e-9)
	assert.InDelta(t, 5.0, b.DistanceTo(a), 1e-9)
}

func TestNewPlayerUsesDefaults(t *testing.T) {
	typ := &Type{Group: GroupTank, Width: 0.8, Height: 0.8}
	defaults := PlayerDefaults{Money: 100, VisionRadius: 4, MaxHP: 30, Speed: 1.5}
	p := NewPlayer(3, typ, 1, 1, 0, "alice", nil, defaults, DefaultPalette[0])

	require.True(t, p.IsPlayer())
	snap := p.Snapshot()
	assert.Equal(t, Snapshot{Alive: true, Money: 100, HP: 30, MaxHP: 30, VisionRadius: 4, Speed: 1.5}, snap)

	custom := NewPlayer(4, typ, 1, 1, 0, "bob", f(50), defaults, DefaultPalette[1])
	assert.Equal(t, 50.0, custom.MaxHP)
	assert.Equal(t, 50.0, custom.HP)
}

func TestApplyPlayerPatch(t *testing.T) {
	p := NewPlayer(3, &Type{Group: GroupTank}, 0, 0, 0, "alice", nil, PlayerDefaults{Money: 1, VisionRadius: 2, MaxHP: 3, Speed: 4}, Color{})
	dbg := "hello"
	p.ApplyPlayer(PlayerPatch{Money: f(9), Debug: &dbg})

	snap := p.Snapshot()
	assert.Equal(t, 9.0, snap.Money)
	assert.Equal(t, 2.0, snap.VisionRadius)
	assert.Equal(t, 4.0, snap.Speed)
	assert.Equal(t, "hello", snap.DebugString)

	plain := NewEntity(5, nil, 0, 0, 0, 1, 1)
	plain.ApplyPlayer(PlayerPatch{Money: f(9)})
	assert.Equal(t, Snapshot{}, plain.Snapshot())
}

func TestColorAllocatorPaletteThenRandom(t *testing.T) {
	a := NewColorAllocator(42)
	for _, want := range DefaultPalette {
		assert.Equal(t, want, a.Next())
	}
	// fallback colours are bright: value >= 0.4 means the max channel is at least 102
	for i := 0; i < 50; i++ {
		c := a.Next()
		maxCh := math.Max(float64(c.R), math.Max(float64(c.G), float64(c.B)))
		assert.GreaterOrEqual(t, maxCh, 101.0)
	}
}

func TestColorAllocatorsAreIndependent(t *testing.T) {
	a := NewColorAllocator(SeedFromString("session-a"))
	a.Next()
	a.Next()
	b := NewColorAllocator(SeedFromString("session-b"))
	assert.Equal(t, DefaultPalette[0], b.Next())
}

func TestColorAllocatorDeterministicForSeed(t *testing.T) {
	a := NewColorAllocatorWithPalette(7, nil)
	b := NewColorAllocatorWithPalette(7, nil)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestHexRoundTrip(t *testing.T) {
	assert.Equal(t, "#114514", DefaultPalette[0].Hex())
	c, err := ParseHex("#ff6262")
	require.NoError(t, err)
	assert.Equal(t, DefaultPalette[2], c)

	_, err = ParseHex("red")
	assert.Error(t, err)
}

func TestFromHSV(t *testing.T) {
	assert.Equal(t, Color{R: 255}, FromHSV(0, 1, 1))
	assert.Equal(t, Color{G: 255}, FromHSV(1.0/3, 1, 1))
	assert.Equal(t, Color{R: 255, G: 255, B: 255}, FromHSV(0.5, 0, 1))
}

func TestTileAlpha(t *testing.T) {
	tile := &Tile{Col: 1, Row: 2, HPRecover: 10, MoneyRecover: 40}
	assert.Equal(t, 0.5, tile.HPAlpha())
	assert.Equal(t, 1.0, tile.MoneyAlpha())
	tile.SetRates(-1, 5)
	assert.Equal(t, 0.0, tile.HPAlpha())
	assert.Equal(t, 0.25, tile.MoneyAlpha())
}
