package strategy

import (
	"math"
	"strings"
	"testing"
	"time"

	"PortfolioSentinel/internal/indicator"
	"PortfolioSentinel/internal/model"
)

var evalTime = time.Date(2025, 3, 3, 22, 0, 0, 0, time.UTC)

func result(typ model.IndicatorType, sig model.Action, strength float64) model.IndicatorResult {
	return model.IndicatorResult{Type: typ, Value: model.Scalar(1), Signal: sig, Strength: strength}
}

func actions(sigs ...model.Action) []model.IndicatorResult {
	out := make([]model.IndicatorResult, len(sigs))
	for i, s := range sigs {
		out[i] = result(model.IndicatorSMA, s, 0.5)
	}
	return out
}

func upTrend(n int) model.PriceSeries {
	bars := make([]model.PriceBar, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		c := 100 + float64(i)*0.8 + math.Sin(float64(i))*0.5
		bars[i] = model.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1e6}
	}
	return model.PriceSeries{Ticker: "UP", Bars: bars}
}

func TestVote_MajorityAcrossFamilies(t *testing.T) {
	b, s, h := model.ActionBuy, model.ActionSell, model.ActionHold
	tests := []struct {
		name string
		sigs []model.Action
		want model.Action
	}{
		{"buy majority", append([]model.Action{b, b, h}, b, s, b), b},
		{"tie resolves to hold", append([]model.Action{b, s}, h, h), h},
		{"buy/sell tie", []model.Action{b, s}, h},
		{"all hold", []model.Action{h, h, h}, h},
		{"sell plurality", []model.Action{s, s, b, h}, s},
		{"single buy", []model.Action{b}, b},
	}
	for _, tt := range tests {
		got, _, _ := Vote(actions(tt.sigs...))
		if got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}
}

func TestVote_Confidence(t *testing.T) {
	results := []model.IndicatorResult{
		result(model.IndicatorRSI, model.ActionBuy, 0.8),
		result(model.IndicatorBollinger, model.ActionBuy, 0.6),
		result(model.IndicatorSMA, model.ActionHold, 0.5),
	}
	sig, conf, reason := Vote(results)
	if sig != model.ActionBuy {
		t.Fatalf("expected buy, got %s", sig)
	}
	want := 2.0 / 3.0 * 0.7
	if math.Abs(conf-want) > 1e-9 {
		t.Errorf("expected confidence %.4f, got %.4f", want, conf)
	}
	if reason != "RSI shows buy signal, Bollinger shows buy signal" {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestVote_ErroredIndicatorsDoNotVote(t *testing.T) {
	failed := model.IndicatorResult{
		Type:   model.IndicatorMACD,
		Signal: model.ActionHold,
		Err:    &indicator.InsufficientDataError{Type: model.IndicatorMACD, Required: 34, Available: 20},
	}
	results := []model.IndicatorResult{failed, failed, result(model.IndicatorRSI, model.ActionSell, 1)}
	sig, conf, reason := Vote(results)
	if sig != model.ActionSell {
		t.Errorf("expected sell, got %s", sig)
	}
	if conf != 1 {
		t.Errorf("expected confidence 1, got %.3f", conf)
	}
	if !strings.Contains(reason, "MACD needs 34 bars, have 20") {
		t.Errorf("reason should mention skipped indicator: %q", reason)
	}
}

func TestVote_TieWithoutHoldVotersHasZeroConfidence(t *testing.T) {
	_, conf, _ := Vote(actions(model.ActionBuy, model.ActionSell))
	if conf != 0 {
		t.Errorf("expected 0 confidence, got %.3f", conf)
	}
}

func TestEvaluate_EmptySeriesHolds(t *testing.T) {
	cfg, _ := Preset("balanced")
	sig := Evaluate("NONE", model.PriceSeries{Ticker: "NONE"}, cfg, evalTime)
	if sig.Signal != model.ActionHold {
		t.Errorf("expected hold, got %s", sig.Signal)
	}
	if sig.Confidence != 0 {
		t.Errorf("expected confidence 0, got %.3f", sig.Confidence)
	}
	if !strings.Contains(sig.Reason, "insufficient data") {
		t.Errorf("reason should note insufficient data: %q", sig.Reason)
	}
	if len(sig.IndicatorResults) != len(cfg.Indicators) {
		t.Errorf("expected %d retained results, got %d", len(cfg.Indicators), len(sig.IndicatorResults))
	}
}

func TestEvaluate_EntryRuleDowngradesWeakBuy(t *testing.T) {
	cfg := model.StrategyConfig{
		Name:       "gated",
		Indicators: []model.IndicatorSpec{{Type: model.IndicatorRSI, Params: model.IndicatorParams{Window: 14}}},
		EntryRule:  model.Rule{MinConfidence: 0.99},
	}
	// mild decline: RSI low enough to buy but far from zero
	closes := []float64{100, 99, 100, 98, 99, 97, 98, 96, 97, 95, 96, 94, 93, 94, 92, 91}
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{Date: evalTime.AddDate(0, 0, i), Close: c}
	}
	sig := Evaluate("GATE", model.PriceSeries{Ticker: "GATE", Bars: bars}, cfg, evalTime)
	raw := sig.IndicatorResults[0]
	if raw.Signal != model.ActionBuy {
		t.Fatalf("precondition: expected RSI buy, got %s (%v)", raw.Signal, raw.Value)
	}
	if sig.Signal != model.ActionHold {
		t.Errorf("expected entry rule to downgrade to hold, got %s", sig.Signal)
	}
	if !strings.Contains(sig.Reason, "entry rule") {
		t.Errorf("reason should mention entry rule: %q", sig.Reason)
	}
}

func TestGenerateSignals_UptrendEndToEnd(t *testing.T) {
	cfg := model.StrategyConfig{
		Name: "e2e",
		Indicators: []model.IndicatorSpec{
			{Type: model.IndicatorSMA, Params: model.IndicatorParams{Window: 20}},
			{Type: model.IndicatorRSI, Params: model.IndicatorParams{Window: 14}},
			{Type: model.IndicatorBollinger, Params: model.IndicatorParams{Window: 20, Multiplier: 2}},
		},
	}
	signals := GenerateSignals(map[string]model.PriceSeries{
		"UP":    upTrend(60),
		"SHORT": upTrend(5),
	}, cfg, evalTime)

	if len(signals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(signals))
	}
	up := signals["UP"]
	if up.Signal != model.ActionBuy && up.Signal != model.ActionHold {
		t.Errorf("uptrend should not produce sell, got %s (%s)", up.Signal, up.Reason)
	}
	// confidence is derivable from the indicator results alone
	_, conf, _ := Vote(up.IndicatorResults)
	if conf != up.Confidence {
		t.Errorf("confidence %.4f not reproducible from results (%.4f)", up.Confidence, conf)
	}
	if !up.Timestamp.Equal(evalTime) {
		t.Errorf("unexpected timestamp %v", up.Timestamp)
	}

	short := signals["SHORT"]
	if short.Signal != model.ActionHold || short.Confidence != 0 {
		t.Errorf("short history should hold with 0 confidence, got %s %.2f", short.Signal, short.Confidence)
	}
}

func TestRecommendFrequency_Table(t *testing.T) {
	tests := []struct {
		horizon int
		style   model.Style
		vol     float64
		want    model.Frequency
	}{
		{1, model.StyleMeanReversion, 0.1, model.FrequencyDaily},
		{1, model.StyleTrendFollowing, 0.1, model.FrequencyWeekly},
		{1, model.StyleConservative, 0.1, model.FrequencyWeekly},
		{2, model.StyleMeanReversion, 0.1, model.FrequencyWeekly},
		{2, model.StyleTrendFollowing, 0.1, model.FrequencyWeekly},
		{2, model.StyleConservative, 0.1, model.FrequencyMonthly},
		{5, model.StyleMeanReversion, 0.1, model.FrequencyWeekly},
		{5, model.StyleTrendFollowing, 0.1, model.FrequencyMonthly},
		{5, model.StyleConservative, 0.1, model.FrequencyMonthly},
		{5, model.StyleConservative, 0.5, model.FrequencyWeekly},
		{1, model.StyleTrendFollowing, 0.4, model.FrequencyDaily},
		{1, model.StyleMeanReversion, 0.9, model.FrequencyDaily},
		{10, model.StyleTrendFollowing, 0, model.FrequencyMonthly},
		{0, model.StyleMeanReversion, 0, model.FrequencyDaily},
	}
	for _, tt := range tests {
		got := RecommendFrequency(tt.horizon, tt.style, tt.vol)
		if got != tt.want {
			t.Errorf("horizon=%d style=%s vol=%.2f: expected %s, got %s", tt.horizon, tt.style, tt.vol, tt.want, got)
		}
	}
}

func TestResolveFrequency(t *testing.T) {
	cfg, _ := Preset("conservative")
	if got := ResolveFrequency(cfg, nil); got != model.FrequencyMonthly {
		t.Errorf("expected monthly for conservative 5y, got %s", got)
	}
	cfg.RebalanceFreq = model.FrequencyDaily
	if got := ResolveFrequency(cfg, nil); got != model.FrequencyDaily {
		t.Errorf("explicit frequency should win, got %s", got)
	}
}

func TestClassifyStyle(t *testing.T) {
	tests := []struct {
		name  string
		specs []model.IndicatorType
		want  model.Style
	}{
		{"oscillators", []model.IndicatorType{model.IndicatorRSI, model.IndicatorBollinger, model.IndicatorSMA}, model.StyleMeanReversion},
		{"averages", []model.IndicatorType{model.IndicatorEMA, model.IndicatorMACD, model.IndicatorRSI}, model.StyleTrendFollowing},
		{"split", []model.IndicatorType{model.IndicatorSMA, model.IndicatorRSI}, model.StyleConservative},
	}
	for _, tt := range tests {
		cfg := model.StrategyConfig{Name: "custom"}
		for _, typ := range tt.specs {
			cfg.Indicators = append(cfg.Indicators, model.IndicatorSpec{Type: typ})
		}
		if got := ClassifyStyle(cfg); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}

	slow := model.StrategyConfig{Name: "slow", Indicators: []model.IndicatorSpec{
		{Type: model.IndicatorSMA, Params: model.IndicatorParams{Window: 200}},
		{Type: model.IndicatorEMA, Params: model.IndicatorParams{Window: 50}},
	}}
	if got := ClassifyStyle(slow); got != model.StyleConservative {
		t.Errorf("long averages should be conservative, got %s", got)
	}
}

func TestPreset_ReturnsCopy(t *testing.T) {
	a, err := Preset("trend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.Indicators[0].Params.Window = 1
	b, _ := Preset("trend")
	if b.Indicators[0].Params.Window != 50 {
		t.Errorf("preset was mutated through a returned copy")
	}
	if _, err := Preset("nope"); err == nil {
		t.Error("expected error for unknown preset")
	}
	for _, name := range PresetNames() {
		cfg, _ := Preset(name)
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestValidateConfig_Errors(t *testing.T) {
	rsi14 := model.IndicatorSpec{Type: model.IndicatorRSI, Params: model.IndicatorParams{Window: 14}}
	tests := []model.StrategyConfig{
		{Name: "empty"},
		{Name: "bad macd", Indicators: []model.IndicatorSpec{{Type: model.IndicatorMACD, Params: model.IndicatorParams{Fast: 30, Slow: 10}}}},
		{Name: "zero window", Indicators: []model.IndicatorSpec{{Type: model.IndicatorRSI}}},
		{Name: "bad rule", Indicators: []model.IndicatorSpec{rsi14}, EntryRule: model.Rule{MinConfidence: 2}},
		{Name: "bad freq", Indicators: []model.IndicatorSpec{rsi14}, RebalanceFreq: "hourly"},
	}
	for _, cfg := range tests {
		if err := ValidateConfig(cfg); err == nil {
			t.Errorf("%s: expected error", cfg.Name)
		}
	}
}

func TestClassifyStyle_PresetNameWithOtherIndicators(t *testing.T) {
	cfg, err := Preset("trend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ClassifyStyle(cfg); got != model.StyleTrendFollowing {
		t.Errorf("unchanged preset should keep its style, got %s", got)
	}

	cfg.Indicators = []model.IndicatorSpec{
		{Type: model.IndicatorRSI, Params: model.IndicatorParams{Window: 14}},
		{Type: model.IndicatorBollinger, Params: model.IndicatorParams{Window: 20}},
	}
	if got := ClassifyStyle(cfg); got != model.StyleMeanReversion {
		t.Errorf("oscillators named trend should classify as mean reversion, got %s", got)
	}
}

func TestWithDefaults_FillsPresetWindows(t *testing.T) {
	cfg, err := Preset("trend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	macd := cfg.Indicators[2]
	if macd.Params.Fast != 12 || macd.Params.Slow != 26 || macd.Params.SignalPeriod != 9 {
		t.Errorf("expected default MACD periods, got %+v", macd.Params)
	}

	raw := model.StrategyConfig{Name: "raw", Indicators: []model.IndicatorSpec{{Type: model.IndicatorSMA}}}
	filled := WithDefaults(raw)
	if filled.Indicators[0].Params.Window != 20 {
		t.Errorf("expected default window 20, got %d", filled.Indicators[0].Params.Window)
	}
	if raw.Indicators[0].Params.Window != 0 {
		t.Errorf("WithDefaults must not mutate its input")
	}
}
