package strategy

import (
	"PortfolioSentinel/internal/calculator"
	"PortfolioSentinel/internal/model"
)

// HighVolatility is the annualized volatility from which the recommended
// frequency moves one step toward daily.
const HighVolatility = 0.40

// frequencyTable maps (horizon bucket, style) to a rebalancing frequency.
// Short horizons and mean reversion lean daily/weekly; long horizons and
// conservative strategies lean monthly.
var frequencyTable = []struct {
	Horizon int
	Style   model.Style
	Freq    model.Frequency
}{
	{1, model.StyleMeanReversion, model.FrequencyDaily},
	{1, model.StyleTrendFollowing, model.FrequencyWeekly},
	{1, model.StyleConservative, model.FrequencyWeekly},
	{2, model.StyleMeanReversion, model.FrequencyWeekly},
	{2, model.StyleTrendFollowing, model.FrequencyWeekly},
	{2, model.StyleConservative, model.FrequencyMonthly},
	{5, model.StyleMeanReversion, model.FrequencyWeekly},
	{5, model.StyleTrendFollowing, model.FrequencyMonthly},
	{5, model.StyleConservative, model.FrequencyMonthly},
}

// horizonBucket maps any horizon in years to 1, 2 or 5.
func horizonBucket(years int) int {
	switch {
	case years <= 1:
		return 1
	case years <= 2:
		return 2
	default:
		return 5
	}
}

// RecommendFrequency looks up the frequency for the horizon and style, then
// moves one step toward daily when volatility is at or above HighVolatility.
func RecommendFrequency(horizon int, style model.Style, volatility float64) model.Frequency {
	bucket := horizonBucket(horizon)
	freq := model.FrequencyMonthly
	for _, row := range frequencyTable {
		if row.Horizon == bucket && row.Style == style {
			freq = row.Freq
			break
		}
	}
	if volatility >= HighVolatility {
		freq = moreFrequent(freq)
	}
	return freq
}

func moreFrequent(f model.Frequency) model.Frequency {
	switch f {
	case model.FrequencyMonthly:
		return model.FrequencyWeekly
	default:
		return model.FrequencyDaily
	}
}

// ResolveFrequency returns the configured frequency, or a recommendation
// from the strategy style and the mean volatility of the supplied series
// when the configuration asks for auto.
func ResolveFrequency(cfg model.StrategyConfig, seriesByTicker map[string]model.PriceSeries) model.Frequency {
	switch cfg.RebalanceFreq {
	case model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly:
		return cfg.RebalanceFreq
	}
	return RecommendFrequency(cfg.Horizon, ClassifyStyle(cfg), MeanVolatility(seriesByTicker))
}

// MeanVolatility averages the annualized volatility of every series that
// has at least two bars.
func MeanVolatility(seriesByTicker map[string]model.PriceSeries) float64 {
	sum, n := 0.0, 0
	for _, s := range seriesByTicker {
		v, err := calculator.AnnualizedVolatility(s.Closes())
		if err != nil {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
