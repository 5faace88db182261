// Package indicator turns a price series into typed indicator readings, each
// with a directional signal and a strength in [0,1].
package indicator

import (
	"fmt"
	"math"

	"PortfolioSentinel/internal/calculator"
	"PortfolioSentinel/internal/model"
)

// Compute evaluates one indicator on the series. It never panics: on failure
// the returned result has Signal hold, a nil Value and Err set to the same
// error that is returned, so callers can keep it for transparency.
func Compute(typ model.IndicatorType, series model.PriceSeries, params model.IndicatorParams) (model.IndicatorResult, error) {
	p, err := Normalize(typ, params)
	if err != nil {
		return failed(typ, params, err), err
	}
	if need := requiredWindow(typ, p); series.Len() < need {
		err := &InsufficientDataError{Type: typ, Required: need, Available: series.Len()}
		return failed(typ, p, err), err
	}

	closes := series.Closes()
	for _, c := range closes {
		if !finite(c) {
			err := fmt.Errorf("%s: close price: %w", typ, ErrNonFinite)
			return failed(typ, p, err), err
		}
	}

	var res model.IndicatorResult
	switch typ {
	case model.IndicatorSMA:
		res, err = computeSMA(closes, p)
	case model.IndicatorEMA:
		res, err = computeEMA(closes, p)
	case model.IndicatorRSI:
		res, err = computeRSI(closes, p)
	case model.IndicatorMACD:
		res, err = computeMACD(closes, p)
	case model.IndicatorBollinger:
		res, err = computeBollinger(closes, p)
	}
	if err != nil {
		return failed(typ, p, err), err
	}
	if !valueFinite(res.Value) || !finite(res.Strength) {
		err := fmt.Errorf("%s: result: %w", typ, ErrNonFinite)
		return failed(typ, p, err), err
	}
	res.Type = typ
	res.Params = p
	return res, nil
}

func failed(typ model.IndicatorType, p model.IndicatorParams, err error) model.IndicatorResult {
	return model.IndicatorResult{Type: typ, Signal: model.ActionHold, Params: p, Err: err}
}

func computeSMA(closes []float64, p model.IndicatorParams) (model.IndicatorResult, error) {
	sma, err := calculator.CalculateSMA(closes, p.Window)
	if err != nil {
		return model.IndicatorResult{}, err
	}
	sig, strength := deviationSignal(closes[len(closes)-1], sma, p)
	return model.IndicatorResult{Value: model.Scalar(sma), Signal: sig, Strength: strength}, nil
}

func computeEMA(closes []float64, p model.IndicatorParams) (model.IndicatorResult, error) {
	ema, err := calculator.CalculateEMA(closes, p.Window)
	if err != nil {
		return model.IndicatorResult{}, err
	}
	sig, strength := deviationSignal(closes[len(closes)-1], ema, p)
	return model.IndicatorResult{Value: model.Scalar(ema), Signal: sig, Strength: strength}, nil
}

// deviationSignal compares price to a moving average. The fractional
// deviation must exceed the threshold to leave hold; strength is the
// deviation relative to the strength cap.
func deviationSignal(price, avg float64, p model.IndicatorParams) (model.Action, float64) {
	if avg == 0 {
		return model.ActionHold, 0
	}
	dev := (price - avg) / avg
	strength := clamp01(math.Abs(dev) / p.StrengthCap)
	switch {
	case dev > p.Threshold:
		return model.ActionBuy, strength
	case dev < -p.Threshold:
		return model.ActionSell, strength
	default:
		return model.ActionHold, strength
	}
}

func computeRSI(closes []float64, p model.IndicatorParams) (model.IndicatorResult, error) {
	rsi, err := calculator.CalculateRSI(closes, p.Window)
	if err != nil {
		return model.IndicatorResult{}, err
	}
	res := model.IndicatorResult{Value: model.Scalar(rsi)}
	switch {
	case rsi < p.Oversold:
		res.Signal = model.ActionBuy
		res.Strength = clamp01((p.Oversold - rsi) / p.Oversold)
	case rsi > p.Overbought:
		res.Signal = model.ActionSell
		res.Strength = clamp01((rsi - p.Overbought) / (100 - p.Overbought))
	default:
		res.Signal = model.ActionHold
		half := (p.Overbought - p.Oversold) / 2
		res.Strength = clamp01(math.Min(rsi-p.Oversold, p.Overbought-rsi) / half)
	}
	return res, nil
}

func computeMACD(closes []float64, p model.IndicatorParams) (model.IndicatorResult, error) {
	points, err := calculator.MACDSeries(closes, p.Fast, p.Slow, p.SignalPeriod)
	if err != nil {
		return model.IndicatorResult{}, err
	}
	last := points[len(points)-1]
	prevHist := last.Histogram
	if len(points) > 1 {
		prevHist = points[len(points)-2].Histogram
	}

	res := model.IndicatorResult{
		Value: model.MACDValue{MACD: last.MACD, Signal: last.Signal, Histogram: last.Histogram},
	}
	switch {
	case last.Histogram > 0:
		// a fresh upward cross or a MACD line still above its signal
		res.Signal = model.ActionBuy
	case last.Histogram < 0 && prevHist >= 0:
		res.Signal = model.ActionSell
	default:
		res.Signal = model.ActionHold
	}
	price := closes[len(closes)-1]
	if price != 0 {
		res.Strength = clamp01(math.Abs(last.Histogram) / (math.Abs(price) * p.StrengthCap))
	}
	return res, nil
}

func computeBollinger(closes []float64, p model.IndicatorParams) (model.IndicatorResult, error) {
	bands, err := calculator.BollingerSeries(closes, p.Window, p.Multiplier)
	if err != nil {
		return model.IndicatorResult{}, err
	}
	b := bands[len(bands)-1]
	price := closes[len(closes)-1]
	res := model.IndicatorResult{
		Value:  model.BandsValue{Upper: b.Upper, Middle: b.Middle, Lower: b.Lower},
		Signal: model.ActionHold,
	}
	width := b.Upper - b.Lower
	if width <= 0 {
		return res, nil
	}
	nearest := math.Min(math.Abs(price-b.Upper), math.Abs(price-b.Lower))
	res.Strength = clamp01(nearest / width)
	switch {
	case price <= b.Lower:
		res.Signal = model.ActionBuy
	case price >= b.Upper:
		res.Signal = model.ActionSell
	}
	return res, nil
}

func valueFinite(v model.IndicatorValue) bool {
	switch val := v.(type) {
	case model.Scalar:
		return finite(float64(val))
	case model.MACDValue:
		return finite(val.MACD) && finite(val.Signal) && finite(val.Histogram)
	case model.BandsValue:
		return finite(val.Upper) && finite(val.Middle) && finite(val.Lower)
	default:
		return false
	}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
