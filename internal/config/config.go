package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"PortfolioSentinel/internal/model"
	"PortfolioSentinel/internal/strategy"
	"PortfolioSentinel/internal/wallet"
)

// Data source providers.
const (
	ProviderYahoo = "yahoo"
	ProviderREST  = "rest"
	ProviderMock  = "mock"
)

// Wallet store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// StrategySection selects a preset or spells out the indicators. Rules that
// are present, and non-zero frequency and horizon fields, override the
// preset's values.
type StrategySection struct {
	Preset        string                `yaml:"preset"`
	Name          string                `yaml:"name"`
	Indicators    []model.IndicatorSpec `yaml:"indicators"`
	EntryRule     *model.Rule           `yaml:"entry_rule"`
	ExitRule      *model.Rule           `yaml:"exit_rule"`
	RebalanceFreq model.Frequency       `yaml:"rebalance_freq"`
	Horizon       int                   `yaml:"horizon"`
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider    string `yaml:"provider"`
		BaseURL     string `yaml:"base_url"`
		APIKey      string `yaml:"api_key"`
		HistoryDays int    `yaml:"history_days"`
	} `yaml:"data_source"`
	Schedule struct {
		DailyCron   string `yaml:"daily_cron"`
		WeeklyCron  string `yaml:"weekly_cron"`
		MonthlyCron string `yaml:"monthly_cron"`
	} `yaml:"schedule"`
	Strategy StrategySection `yaml:"strategy"`
	Wallet   struct {
		wallet.Costs `yaml:",inline"`
		Store        string `yaml:"store"`
		StatePath    string `yaml:"state_path"`
	} `yaml:"wallet"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Watchlist   []string `yaml:"watchlist"`
	MetricsAddr string   `yaml:"metrics_addr"`
	LogLevel    string   `yaml:"log_level"`
	Proxy       string   `yaml:"proxy"`
}

// Load reads .env (if present) and the YAML file, then applies environment
// variable overrides and defaults. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	setString("DATA_PROVIDER", &c.DataSource.Provider)
	setString("DATA_BASE_URL", &c.DataSource.BaseURL)
	setString("DATA_API_KEY", &c.DataSource.APIKey)
	setString("HTTPS_PROXY", &c.Proxy)
	setString("CRON_DAILY", &c.Schedule.DailyCron)
	setString("CRON_WEEKLY", &c.Schedule.WeeklyCron)
	setString("CRON_MONTHLY", &c.Schedule.MonthlyCron)
	setString("STRATEGY_PRESET", &c.Strategy.Preset)
	setString("WALLET_STORE", &c.Wallet.Store)
	setString("WALLET_STATE_PATH", &c.Wallet.StatePath)
	setString("SQLITE_PATH", &c.Database.SQLitePath)
	setString("METRICS_ADDR", &c.MetricsAddr)
	setString("LOG_LEVEL", &c.LogLevel)

	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = splitList(v)
	}
	if v := os.Getenv("STRATEGY_HORIZON"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid STRATEGY_HORIZON: %w", err)
		}
		c.Strategy.Horizon = h
	}
	for key, dst := range map[string]*float64{
		"WALLET_COMMISSION": &c.Wallet.Commission,
		"WALLET_SLIPPAGE":   &c.Wallet.Slippage,
	} {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = f
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 0 22 * * 1-5"
	}
	if c.Schedule.WeeklyCron == "" {
		c.Schedule.WeeklyCron = "0 0 8 * * 1"
	}
	if c.Schedule.MonthlyCron == "" {
		c.Schedule.MonthlyCron = "0 0 9 1 * *"
	}
	if c.Strategy.Preset == "" && len(c.Strategy.Indicators) == 0 {
		c.Strategy.Preset = "balanced"
	}
	if c.Wallet.Store == "" {
		c.Wallet.Store = StoreSQLite
	}
	if c.Wallet.StatePath == "" {
		c.Wallet.StatePath = "data/wallets.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/portfolio_sentinel.db"
	}
	if len(c.Watchlist) == 0 {
		c.Watchlist = []string{"SPY"}
	}
	for i, t := range c.Watchlist {
		c.Watchlist[i] = strings.ToUpper(strings.TrimSpace(t))
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// StrategyConfig resolves the strategy section into an engine config.
func (c *Config) StrategyConfig() (model.StrategyConfig, error) {
	s := c.Strategy
	var sc model.StrategyConfig
	if s.Preset != "" {
		p, err := strategy.Preset(s.Preset)
		if err != nil {
			return model.StrategyConfig{}, err
		}
		sc = p
	}
	if len(s.Indicators) > 0 {
		sc.Indicators = append([]model.IndicatorSpec(nil), s.Indicators...)
		if s.Preset != "" && s.Name == "" {
			sc.Name = s.Preset + "-custom"
		}
	}
	if s.Name != "" {
		sc.Name = s.Name
	}
	if s.EntryRule != nil {
		sc.EntryRule = *s.EntryRule
	}
	if s.ExitRule != nil {
		sc.ExitRule = *s.ExitRule
	}
	if s.RebalanceFreq != "" {
		sc.RebalanceFreq = s.RebalanceFreq
	}
	if s.Horizon != 0 {
		sc.Horizon = s.Horizon
	}
	if sc.RebalanceFreq == "" {
		sc.RebalanceFreq = model.FrequencyAuto
	}
	sc = strategy.WithDefaults(sc)
	if err := strategy.ValidateConfig(sc); err != nil {
		return model.StrategyConfig{}, err
	}
	return sc, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, rest, mock", c.DataSource.Provider)
	}
	if c.DataSource.HistoryDays < 0 {
		return fmt.Errorf("data_source.history_days must not be negative")
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"schedule.daily_cron":   c.Schedule.DailyCron,
		"schedule.weekly_cron":  c.Schedule.WeeklyCron,
		"schedule.monthly_cron": c.Schedule.MonthlyCron,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if _, err := c.StrategyConfig(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if err := c.Wallet.Costs.Validate(); err != nil {
		return fmt.Errorf("wallet: %w", err)
	}
	switch c.Wallet.Store {
	case StoreMemory, StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("wallet.store %q is not one of memory, file, sqlite", c.Wallet.Store)
	}
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must not be empty")
	}
	for _, t := range c.Watchlist {
		if t == "" {
			return fmt.Errorf("watchlist contains an empty ticker")
		}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
