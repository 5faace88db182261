package calculator

import (
	"errors"
	"math"
)

// Band is one point of the Bollinger bands.
type Band struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// BollingerSeries computes middle = SMA(period) and upper/lower = middle ±
// multiplier·σ with σ the population standard deviation of the window.
// The result has len(closes)-period+1 points.
func BollingerSeries(closes []float64, period int, multiplier float64) ([]Band, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if multiplier <= 0 {
		return nil, errors.New("multiplier must be positive")
	}
	middles, err := SMASeries(closes, period)
	if err != nil {
		return nil, err
	}
	bands := make([]Band, len(middles))
	for i, mid := range middles {
		sd := populationStdDev(closes[i:i+period], mid)
		bands[i] = Band{
			Upper:  mid + multiplier*sd,
			Middle: mid,
			Lower:  mid - multiplier*sd,
		}
	}
	return bands, nil
}

// StdDev returns the population standard deviation of the values.
func StdDev(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNotEnoughData
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return populationStdDev(values, sum/float64(len(values))), nil
}

func populationStdDev(values []float64, mean float64) float64 {
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}
