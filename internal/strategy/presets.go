package strategy

import (
	"fmt"
	"slices"
	"strings"

	"PortfolioSentinel/internal/indicator"
	"PortfolioSentinel/internal/model"
)

// presetEntry pairs a named strategy with its character.
type presetEntry struct {
	Style    model.Style
	Strategy model.StrategyConfig
}

// presets are the built-in strategies selectable by name from configuration.
var presets = map[string]presetEntry{
	"trend": {
		Style: model.StyleTrendFollowing,
		Strategy: model.StrategyConfig{
			Name: "trend",
			Indicators: []model.IndicatorSpec{
				{Type: model.IndicatorSMA, Params: model.IndicatorParams{Window: 50}},
				{Type: model.IndicatorEMA, Params: model.IndicatorParams{Window: 20}},
				{Type: model.IndicatorMACD},
			},
			RebalanceFreq: model.FrequencyAuto,
			Horizon:       2,
		},
	},
	"mean_reversion": {
		Style: model.StyleMeanReversion,
		Strategy: model.StrategyConfig{
			Name: "mean_reversion",
			Indicators: []model.IndicatorSpec{
				{Type: model.IndicatorRSI, Params: model.IndicatorParams{Window: 14}},
				{Type: model.IndicatorBollinger, Params: model.IndicatorParams{Window: 20, Multiplier: 2}},
			},
			RebalanceFreq: model.FrequencyAuto,
			Horizon:       1,
		},
	},
	"conservative": {
		Style: model.StyleConservative,
		Strategy: model.StrategyConfig{
			Name: "conservative",
			Indicators: []model.IndicatorSpec{
				{Type: model.IndicatorSMA, Params: model.IndicatorParams{Window: 200, Threshold: 0.05}},
				{Type: model.IndicatorRSI, Params: model.IndicatorParams{Window: 14, Oversold: 25, Overbought: 75}},
			},
			EntryRule:     model.Rule{MinConfidence: 0.3},
			ExitRule:      model.Rule{MinConfidence: 0.3},
			RebalanceFreq: model.FrequencyAuto,
			Horizon:       5,
		},
	},
	"balanced": {
		Style: model.StyleMeanReversion,
		Strategy: model.StrategyConfig{
			Name: "balanced",
			Indicators: []model.IndicatorSpec{
				{Type: model.IndicatorSMA, Params: model.IndicatorParams{Window: 20}},
				{Type: model.IndicatorRSI, Params: model.IndicatorParams{Window: 14}},
				{Type: model.IndicatorBollinger, Params: model.IndicatorParams{Window: 20, Multiplier: 2}},
			},
			RebalanceFreq: model.FrequencyAuto,
			Horizon:       2,
		},
	},
}

// Preset returns a copy of the named built-in strategy with indicator
// defaults filled in.
func Preset(name string) (model.StrategyConfig, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return model.StrategyConfig{}, fmt.Errorf("unknown strategy preset %q", name)
	}
	return WithDefaults(p.Strategy), nil
}

// PresetNames lists the built-in strategies in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// WithDefaults returns a copy of cfg whose indicator params have every
// omitted field set to its default.
func WithDefaults(cfg model.StrategyConfig) model.StrategyConfig {
	specs := make([]model.IndicatorSpec, len(cfg.Indicators))
	for i, spec := range cfg.Indicators {
		specs[i] = model.IndicatorSpec{Type: spec.Type, Params: indicator.WithDefaults(spec.Type, spec.Params)}
	}
	cfg.Indicators = specs
	return cfg
}

// ClassifyStyle derives the strategy character. A preset keeps its declared
// style only while its indicator list is unchanged; otherwise oscillators
// (RSI, Bollinger) count as mean reversion and moving averages (SMA, EMA,
// MACD) as trend following. Long moving averages (window >= 100) and evenly
// split strategies are conservative.
func ClassifyStyle(cfg model.StrategyConfig) model.Style {
	if p, ok := presets[cfg.Name]; ok &&
		slices.Equal(WithDefaults(cfg).Indicators, WithDefaults(p.Strategy).Indicators) {
		return p.Style
	}
	var reversion, trend, slow int
	for _, spec := range cfg.Indicators {
		switch spec.Type {
		case model.IndicatorRSI, model.IndicatorBollinger:
			reversion++
		case model.IndicatorSMA, model.IndicatorEMA:
			trend++
			if spec.Params.Window >= 100 {
				slow++
			}
		case model.IndicatorMACD:
			trend++
		}
	}
	switch {
	case slow > 0 && slow*2 >= trend:
		return model.StyleConservative
	case reversion > trend:
		return model.StyleMeanReversion
	case trend > reversion:
		return model.StyleTrendFollowing
	default:
		return model.StyleConservative
	}
}
