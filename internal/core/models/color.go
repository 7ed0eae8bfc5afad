package models

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// Color is an opaque RGB colour.
type Color struct {
	R, G, B uint8
}

// Hex returns the colour in #rrggbb form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rrggbb.
func ParseHex(s string) (Color, error) {
	var c Color
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return c, nil
}

// FromHSV converts hue, saturation and value, each in [0,1], to RGB.
func FromHSV(h, s, v float64) Color {
	var r, g, b float64
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return Color{R: toByte(r), G: toByte(g), B: toByte(b)}
}

func toByte(x float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, x)) * 255))
}

// DefaultPalette is handed out in order before random colours are used.
var DefaultPalette = []Color{
	{R: 0x11, G: 0x45, B: 0x14},
	{R: 0x19, G: 0x19, B: 0x81},
	{R: 0xff, G: 0x62, B: 0x62},
}

// ColorAllocator assigns player colours. It is owned by one world engine so
// sessions never share the palette cursor.
type ColorAllocator struct {
	palette []Color
	next    int
	rng     *rand.Rand
}

// NewColorAllocator creates an allocator over DefaultPalette whose random
// fallback is seeded with seed.
func NewColorAllocator(seed uint64) *ColorAllocator {
	return NewColorAllocatorWithPalette(seed, DefaultPalette)
}

func NewColorAllocatorWithPalette(seed uint64, palette []Color) *ColorAllocator {
	p := make([]Color, len(palette))
	copy(p, palette)
	return &ColorAllocator{
		palette: p,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// SeedFromString derives an allocator seed from a session identifier.
func SeedFromString(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Next returns the next palette colour, then random bright colours
// (value in [0.4,1), saturation in [0.7,1)).
func (a *ColorAllocator) Next() Color {
	if a.next < len(a.palette) {
		c := a.palette[a.next]
		a.next++
		return c
	}
	value := a.rng.Float64()*0.6 + 0.4
	hue := a.rng.Float64()
	saturation := a.rng.Float64()*0.3 + 0.7
	return FromHSV(hue, saturation, value)
}
