package model

// IndicatorType names a technical indicator.
type IndicatorType string

const (
	IndicatorSMA       IndicatorType = "SMA"
	IndicatorEMA       IndicatorType = "EMA"
	IndicatorRSI       IndicatorType = "RSI"
	IndicatorMACD      IndicatorType = "MACD"
	IndicatorBollinger IndicatorType = "BOLLINGER"
)

// DisplayName is the label used in human-readable reasons.
func (t IndicatorType) DisplayName() string {
	switch t {
	case IndicatorBollinger:
		return "Bollinger"
	default:
		return string(t)
	}
}

// IndicatorValue is the computed value of an indicator. The set of
// implementations is closed: Scalar, MACDValue and BandsValue.
type IndicatorValue interface {
	indicatorValue()
}

// Scalar is the value of SMA, EMA and RSI.
type Scalar float64

// MACDValue is the last point of the MACD line, its signal line and the histogram.
type MACDValue struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// BandsValue is the last point of the Bollinger bands.
type BandsValue struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

func (Scalar) indicatorValue()     {}
func (MACDValue) indicatorValue()  {}
func (BandsValue) indicatorValue() {}

// IndicatorParams configures one indicator. Periods must be set; zero
// thresholds, caps and bands fall back to defaults.
type IndicatorParams struct {
	Window       int     `yaml:"window,omitempty" json:"window,omitempty"`
	Fast         int     `yaml:"fast,omitempty" json:"fast,omitempty"`
	Slow         int     `yaml:"slow,omitempty" json:"slow,omitempty"`
	SignalPeriod int     `yaml:"signal_period,omitempty" json:"signal_period,omitempty"`
	Multiplier   float64 `yaml:"multiplier,omitempty" json:"multiplier,omitempty"`
	Threshold    float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	StrengthCap  float64 `yaml:"strength_cap,omitempty" json:"strength_cap,omitempty"`
	Oversold     float64 `yaml:"oversold,omitempty" json:"oversold,omitempty"`
	Overbought   float64 `yaml:"overbought,omitempty" json:"overbought,omitempty"`
}

// IndicatorResult is created fresh for every computation and never mutated.
// Err is set when the indicator could not be computed; Value is nil then.
type IndicatorResult struct {
	Type     IndicatorType   `json:"type"`
	Value    IndicatorValue  `json:"value,omitempty"`
	Signal   Action          `json:"signal"`
	Strength float64         `json:"strength"`
	Params   IndicatorParams `json:"params"`
	Err      error           `json:"-"`
}

// OK reports whether the indicator produced a value.
func (r IndicatorResult) OK() bool { return r.Err == nil && r.Value != nil }
