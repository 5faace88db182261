package calculator

import "errors"

// MACDPoint is one bar of the MACD indicator.
type MACDPoint struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACDSeries computes the MACD line (EMA(fast) - EMA(slow)), its signal line
// (EMA(signal) of the MACD line) and the histogram. The MACD line is taken
// from the bar where the slow EMA has a full window, so the result has
// len(closes)-slow+1 points. Requires slow+signal-1 closes.
func MACDSeries(closes []float64, fast, slow, signal int) ([]MACDPoint, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, ErrInvalidPeriod
	}
	if fast >= slow {
		return nil, errors.New("fast period must be shorter than slow period")
	}
	if len(closes) < slow+signal-1 {
		return nil, ErrNotEnoughData
	}

	fastEMA, err := EMASeries(closes, fast)
	if err != nil {
		return nil, err
	}
	slowEMA, err := EMASeries(closes, slow)
	if err != nil {
		return nil, err
	}

	line := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		line = append(line, fastEMA[i]-slowEMA[i])
	}
	signalLine, err := EMASeries(line, signal)
	if err != nil {
		return nil, err
	}

	points := make([]MACDPoint, len(line))
	for i := range line {
		points[i] = MACDPoint{
			MACD:      line[i],
			Signal:    signalLine[i],
			Histogram: line[i] - signalLine[i],
		}
	}
	return points, nil
}
