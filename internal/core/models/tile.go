package models

// Upper bounds used to scale tile stripes.
const (
	MaxHPRecover    = 20
	MaxMoneyRecover = 20
)

// Tile is a map cell's recovery rates. Tiles only exist when the map
// creation event carries an increment map.
type Tile struct {
	Col          int
	Row          int
	HPRecover    float64
	MoneyRecover float64
}

// SetRates replaces both rates; used by map tooling.
func (t *Tile) SetRates(hp, money float64) {
	t.HPRecover = hp
	t.MoneyRecover = money
}

// HPAlpha is the opacity of the HP stripe in [0,1].
func (t *Tile) HPAlpha() float64 {
	return clamp01(t.HPRecover / MaxHPRecover)
}

// MoneyAlpha is the opacity of the money stripe in [0,1].
func (t *Tile) MoneyAlpha() float64 {
	return clamp01(t.MoneyRecover / MaxMoneyRecover)
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
