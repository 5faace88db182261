package calculator

import (
	"errors"
)

var (
	// ErrInvalidPeriod is returned for a non-positive period.
	ErrInvalidPeriod = errors.New("period must be positive")
	// ErrNotEnoughData is returned when fewer prices than required are supplied.
	ErrNotEnoughData = errors.New("not enough data")
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(prices) < period {
		return 0, ErrNotEnoughData
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMASeries returns one average per full window: len(prices)-period+1 values,
// the i-th being the mean of prices[i:i+period].
func SMASeries(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(prices) < period {
		return nil, ErrNotEnoughData
	}
	out := make([]float64, 0, len(prices)-period+1)
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out, nil
}

// EMASeries computes the exponential moving average of every price.
// The first value is seeded with the first price and alpha = 2/(period+1).
func EMASeries(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(prices) == 0 {
		return nil, ErrNotEnoughData
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = prices[i]*alpha + out[i-1]*(1-alpha)
	}
	return out, nil
}

// CalculateEMA returns the last EMA value. At least period prices are required.
func CalculateEMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(prices) < period {
		return 0, ErrNotEnoughData
	}
	series, err := EMASeries(prices, period)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}
