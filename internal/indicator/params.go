package indicator

import (
	"PortfolioSentinel/internal/model"
)

// Defaults used by WithDefaults and, for the non-period fields, by Normalize.
const (
	DefaultMAWindow          = 20
	DefaultMAThreshold       = 0.02
	DefaultMAStrengthCap     = 0.10
	DefaultRSIWindow         = 14
	DefaultOversold          = 30.0
	DefaultOverbought        = 70.0
	DefaultMACDFast          = 12
	DefaultMACDSlow          = 26
	DefaultMACDSignal        = 9
	DefaultMACDStrengthCap   = 0.01
	DefaultBollingerWindow   = 20
	DefaultBollingerMultiple = 2.0
)

// WithDefaults fills every zero field that typ uses, periods included.
// Configuration layers call it so that an omitted window means the default;
// Compute itself rejects non-positive periods.
func WithDefaults(typ model.IndicatorType, p model.IndicatorParams) model.IndicatorParams {
	switch typ {
	case model.IndicatorSMA, model.IndicatorEMA:
		p.Window = orInt(p.Window, DefaultMAWindow)
		p.Threshold = orFloat(p.Threshold, DefaultMAThreshold)
		p.StrengthCap = orFloat(p.StrengthCap, DefaultMAStrengthCap)
	case model.IndicatorRSI:
		p.Window = orInt(p.Window, DefaultRSIWindow)
		p.Oversold = orFloat(p.Oversold, DefaultOversold)
		p.Overbought = orFloat(p.Overbought, DefaultOverbought)
	case model.IndicatorMACD:
		p.Fast = orInt(p.Fast, DefaultMACDFast)
		p.Slow = orInt(p.Slow, DefaultMACDSlow)
		p.SignalPeriod = orInt(p.SignalPeriod, DefaultMACDSignal)
		p.StrengthCap = orFloat(p.StrengthCap, DefaultMACDStrengthCap)
	case model.IndicatorBollinger:
		p.Window = orInt(p.Window, DefaultBollingerWindow)
		p.Multiplier = orFloat(p.Multiplier, DefaultBollingerMultiple)
	}
	return p
}

// Normalize validates params for typ. Every period typ uses must be
// positive; zero thresholds, caps, bands and multipliers take defaults.
func Normalize(typ model.IndicatorType, p model.IndicatorParams) (model.IndicatorParams, error) {
	switch typ {
	case model.IndicatorSMA, model.IndicatorEMA, model.IndicatorRSI, model.IndicatorBollinger:
		if p.Window <= 0 {
			return p, &InvalidParamsError{Type: typ, Reason: "window must be positive"}
		}
	case model.IndicatorMACD:
		if p.Fast <= 0 || p.Slow <= 0 || p.SignalPeriod <= 0 {
			return p, &InvalidParamsError{Type: typ, Reason: "fast, slow and signal periods must be positive"}
		}
		if p.Fast >= p.Slow {
			return p, &InvalidParamsError{Type: typ, Reason: "fast period must be shorter than slow period"}
		}
	default:
		return p, &InvalidParamsError{Type: typ, Reason: "unknown indicator type"}
	}
	if p.Threshold < 0 || p.StrengthCap < 0 || p.Multiplier < 0 {
		return p, &InvalidParamsError{Type: typ, Reason: "threshold, strength cap and multiplier must not be negative"}
	}

	p = WithDefaults(typ, p)
	if typ == model.IndicatorRSI && (p.Oversold <= 0 || p.Overbought >= 100 || p.Oversold >= p.Overbought) {
		return p, &InvalidParamsError{Type: typ, Reason: "need 0 < oversold < overbought < 100"}
	}
	return p, nil
}

// RequiredWindow is the minimum number of bars Compute needs for typ.
func RequiredWindow(typ model.IndicatorType, p model.IndicatorParams) (int, error) {
	p, err := Normalize(typ, p)
	if err != nil {
		return 0, err
	}
	return requiredWindow(typ, p), nil
}

func requiredWindow(typ model.IndicatorType, p model.IndicatorParams) int {
	switch typ {
	case model.IndicatorRSI:
		return p.Window + 1
	case model.IndicatorMACD:
		return p.Slow + p.SignalPeriod - 1
	default:
		return p.Window
	}
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
