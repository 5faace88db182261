package strategy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"PortfolioSentinel/internal/indicator"
	"PortfolioSentinel/internal/model"
)

// GenerateSignals evaluates the strategy for every ticker. The engine keeps
// no state: the returned map is the only record of the evaluation.
func GenerateSignals(seriesByTicker map[string]model.PriceSeries, cfg model.StrategyConfig, now time.Time) map[string]model.Signal {
	out := make(map[string]model.Signal, len(seriesByTicker))
	for ticker, series := range seriesByTicker {
		out[ticker] = Evaluate(ticker, series, cfg, now)
	}
	return out
}

// Evaluate computes every configured indicator on the series and combines
// them into one signal. It never fails: indicators that cannot be computed
// are kept in IndicatorResults but do not vote.
func Evaluate(ticker string, series model.PriceSeries, cfg model.StrategyConfig, now time.Time) model.Signal {
	results := make([]model.IndicatorResult, 0, len(cfg.Indicators))
	for _, spec := range cfg.Indicators {
		res, _ := indicator.Compute(spec.Type, series, spec.Params)
		results = append(results, res)
	}

	action, confidence, reason := Vote(results)

	switch {
	case action == model.ActionBuy && confidence < cfg.EntryRule.MinConfidence:
		reason = fmt.Sprintf("%s; entry rule needs confidence %.2f, got %.2f", reason, cfg.EntryRule.MinConfidence, confidence)
		action = model.ActionHold
	case action == model.ActionSell && confidence < cfg.ExitRule.MinConfidence:
		reason = fmt.Sprintf("%s; exit rule needs confidence %.2f, got %.2f", reason, cfg.ExitRule.MinConfidence, confidence)
		action = model.ActionHold
	}

	return model.Signal{
		Ticker:           ticker,
		Signal:           action,
		Confidence:       confidence,
		Reason:           reason,
		IndicatorResults: results,
		Timestamp:        now,
	}
}

// Vote runs the majority vote over the indicators that produced a value.
// A strict plurality wins; any tie, including all-hold, resolves to hold.
// Confidence is the share of voters agreeing with the winner times their
// average strength, clamped to [0,1].
func Vote(results []model.IndicatorResult) (model.Action, float64, string) {
	counts := map[model.Action]int{}
	valid := 0
	var skipped []string
	for _, r := range results {
		if !r.OK() {
			skipped = append(skipped, describeFailure(r))
			continue
		}
		counts[r.Signal]++
		valid++
	}

	if valid == 0 {
		reason := "insufficient data: no indicator could be computed"
		if len(skipped) > 0 {
			reason += " (" + strings.Join(skipped, ", ") + ")"
		}
		return model.ActionHold, 0, reason
	}

	winner := plurality(counts)

	var agreeing []string
	strengthSum := 0.0
	for _, r := range results {
		if !r.OK() || r.Signal != winner {
			continue
		}
		agreeing = append(agreeing, fmt.Sprintf("%s shows %s signal", r.Type.DisplayName(), r.Signal))
		strengthSum += r.Strength
	}

	confidence := 0.0
	reason := "indicators disagree, holding"
	if len(agreeing) > 0 {
		share := float64(len(agreeing)) / float64(valid)
		confidence = clamp01(share * strengthSum / float64(len(agreeing)))
		reason = strings.Join(agreeing, ", ")
	}
	if len(skipped) > 0 {
		reason += "; skipped: " + strings.Join(skipped, ", ")
	}
	return winner, confidence, reason
}

func plurality(counts map[model.Action]int) model.Action {
	best := model.ActionHold
	bestCount := -1
	tie := false
	for _, a := range []model.Action{model.ActionBuy, model.ActionSell, model.ActionHold} {
		switch c := counts[a]; {
		case c > bestCount:
			best, bestCount, tie = a, c, false
		case c == bestCount:
			tie = true
		}
	}
	if tie {
		return model.ActionHold
	}
	return best
}

func describeFailure(r model.IndicatorResult) string {
	var ide *indicator.InsufficientDataError
	if errors.As(r.Err, &ide) {
		return fmt.Sprintf("%s needs %d bars, have %d", r.Type.DisplayName(), ide.Required, ide.Available)
	}
	return fmt.Sprintf("%s failed: %v", r.Type.DisplayName(), r.Err)
}

// ValidateConfig checks every indicator spec of the strategy up front.
func ValidateConfig(cfg model.StrategyConfig) error {
	if len(cfg.Indicators) == 0 {
		return fmt.Errorf("strategy %q has no indicators", cfg.Name)
	}
	for _, spec := range cfg.Indicators {
		if _, err := indicator.Normalize(spec.Type, spec.Params); err != nil {
			return err
		}
	}
	for _, r := range []model.Rule{cfg.EntryRule, cfg.ExitRule} {
		if r.MinConfidence < 0 || r.MinConfidence > 1 {
			return fmt.Errorf("strategy %q: min_confidence must be within [0,1]", cfg.Name)
		}
	}
	switch cfg.RebalanceFreq {
	case "", model.FrequencyAuto, model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly:
	default:
		return fmt.Errorf("strategy %q: unknown rebalance frequency %q", cfg.Name, cfg.RebalanceFreq)
	}
	return nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
