package calculator

import (
	"errors"
	"math"
)

// TradingDaysPerYear annualizes daily volatility.
const TradingDaysPerYear = 252

// Returns computes simple period-over-period returns.
func Returns(closes []float64) ([]float64, error) {
	if len(closes) < 2 {
		return nil, ErrNotEnoughData
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			return nil, errors.New("zero price in series")
		}
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out, nil
}

// AnnualizedVolatility is the standard deviation of daily returns scaled to a year.
func AnnualizedVolatility(closes []float64) (float64, error) {
	rets, err := Returns(closes)
	if err != nil {
		return 0, err
	}
	sd, err := StdDev(rets)
	if err != nil {
		return 0, err
	}
	return sd * math.Sqrt(TradingDaysPerYear), nil
}
