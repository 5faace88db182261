package model

import "time"

// Action is the recommendation of an indicator or a strategy.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionHold Action = "hold"
	ActionSell Action = "sell"
)

// Frequency is how often a portfolio should be rebalanced.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	// FrequencyAuto asks the strategy engine to recommend one.
	FrequencyAuto Frequency = "auto"
)

// Style is the character of a strategy.
type Style string

const (
	StyleMeanReversion  Style = "mean_reversion"
	StyleTrendFollowing Style = "trend_following"
	StyleConservative   Style = "conservative"
)

// IndicatorSpec selects one indicator and its parameters within a strategy.
type IndicatorSpec struct {
	Type   IndicatorType   `yaml:"type" json:"type"`
	Params IndicatorParams `yaml:"params" json:"params"`
}

// Rule gates a buy (entry) or sell (exit) decision on confidence.
type Rule struct {
	MinConfidence float64 `yaml:"min_confidence" json:"min_confidence"`
}

// StrategyConfig enumerates everything the strategy engine needs.
type StrategyConfig struct {
	Name          string          `yaml:"name" json:"name"`
	Indicators    []IndicatorSpec `yaml:"indicators" json:"indicators"`
	EntryRule     Rule            `yaml:"entry_rule" json:"entry_rule"`
	ExitRule      Rule            `yaml:"exit_rule" json:"exit_rule"`
	RebalanceFreq Frequency       `yaml:"rebalance_freq" json:"rebalance_freq"`
	Horizon       int             `yaml:"horizon" json:"horizon"` // years: 1, 2 or 5
}

// Signal is the output of one strategy evaluation for one ticker.
// The next evaluation supersedes it.
type Signal struct {
	Ticker           string            `json:"ticker"`
	Signal           Action            `json:"signal"`
	Confidence       float64           `json:"confidence"`
	Reason           string            `json:"reason"`
	IndicatorResults []IndicatorResult `json:"indicator_results"`
	Timestamp        time.Time         `json:"timestamp"`
}
