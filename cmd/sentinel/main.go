package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"PortfolioSentinel/internal/collector"
	"PortfolioSentinel/internal/config"
	"PortfolioSentinel/internal/logger"
	"PortfolioSentinel/internal/metrics"
	"PortfolioSentinel/internal/notifier"
	"PortfolioSentinel/internal/recorder"
	"PortfolioSentinel/internal/scheduler"
	"PortfolioSentinel/internal/store"
	"PortfolioSentinel/internal/wallet"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := logger.New("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(cfg.LogLevel)
	log.Info().Msg("PortfolioSentinel starting...")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	strat, err := cfg.StrategyConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("strategy config")
	}

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case config.ProviderREST:
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.ProviderMock:
		fetcher = &collector.MockFetcher{Price: 100}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Strs("watchlist", cfg.Watchlist).Msg("data source ready")
	col := collector.NewCollector(fetcher, cfg.DataSource.HistoryDays, log)

	// Init wallet store
	st, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open wallet store")
	}
	defer st.Close()

	ws, err := wallet.NewService(st, cfg.Wallet.Costs, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init wallet service")
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		_ = os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755)
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	if cfg.MetricsAddr != "" {
		srv := metrics.Serve(cfg.MetricsAddr)
		defer srv.Close()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics endpoint started")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, ws, tn, rec, strat, cfg.Watchlist, log)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.WeeklyCron, cfg.Schedule.MonthlyCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, evaluating now")
		go sched.RunNow()
	}

	log.Info().Str("strategy", strat.Name).Msg("PortfolioSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
}

func openStore(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.Wallet.Store {
	case config.StoreMemory:
		log.Warn().Msg("wallet store is in memory; balances are lost on restart")
		return store.NewMemoryStore(), nil
	case config.StoreFile:
		if err := os.MkdirAll(filepath.Dir(cfg.Wallet.StatePath), 0o755); err != nil {
			return nil, err
		}
		return store.NewFileStore(cfg.Wallet.StatePath)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			return nil, err
		}
		return store.NewSQLiteStore(cfg.Database.SQLitePath, log)
	}
}
