package wallet

import (
	"math"

	"github.com/shopspring/decimal"
)

// Costs are per-trade frictions as fractions of notional, e.g. 0.001 for 10bp.
type Costs struct {
	Commission float64 `yaml:"commission"`
	Slippage   float64 `yaml:"slippage"`
}

func (c Costs) Validate() error {
	if c.Commission < 0 || c.Slippage < 0 || c.Commission+c.Slippage >= 1 ||
		math.IsNaN(c.Commission) || math.IsNaN(c.Slippage) {
		return ErrInvalidCosts
	}
	return nil
}

func (c Costs) rate() decimal.Decimal {
	return decimal.NewFromFloat(c.Commission).Add(decimal.NewFromFloat(c.Slippage))
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// cents rounds half away from zero to two decimals.
func cents(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
