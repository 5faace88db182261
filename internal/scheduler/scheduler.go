// Package scheduler runs strategy evaluations on cron and answers chat commands.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"PortfolioSentinel/internal/collector"
	"PortfolioSentinel/internal/metrics"
	"PortfolioSentinel/internal/model"
	"PortfolioSentinel/internal/notifier"
	"PortfolioSentinel/internal/recorder"
	"PortfolioSentinel/internal/strategy"
	"PortfolioSentinel/internal/wallet"
)

// Notifier delivers a report to the chat.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Wallet    *wallet.Service
	Notifier  Notifier
	Recorder  recorder.Recorder
	Strategy  model.StrategyConfig
	Watchlist []string
	Ctx       context.Context

	log zerolog.Logger
	now func() time.Time

	mu       sync.Mutex
	lastRun  time.Time
	lastFreq model.Frequency
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, ws *wallet.Service, n Notifier,
	rec recorder.Recorder, strat model.StrategyConfig, watchlist []string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Wallet:    ws,
		Notifier:  n,
		Recorder:  rec,
		Strategy:  strat,
		Watchlist: append([]string(nil), watchlist...),
		Ctx:       ctx,
		log:       log.With().Str("component", "scheduler").Logger(),
		now:       time.Now,
	}
}

// RegisterAll registers one evaluation slot per rebalance frequency. Each
// slot only reports when it matches the strategy's effective frequency.
func (s *Scheduler) RegisterAll(dailyCron, weeklyCron, monthlyCron string) error {
	slots := []struct {
		spec string
		freq model.Frequency
	}{
		{dailyCron, model.FrequencyDaily},
		{weeklyCron, model.FrequencyWeekly},
		{monthlyCron, model.FrequencyMonthly},
	}
	for _, slot := range slots {
		freq := slot.freq
		if _, err := s.Cron.AddFunc(slot.spec, func() { s.tick(freq) }); err != nil {
			return fmt.Errorf("register %s task: %w", freq, err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow evaluates and reports immediately regardless of frequency.
func (s *Scheduler) RunNow() {
	signals, freq := s.Evaluate()
	s.trySend(notifier.FormatSignalReport(s.Strategy.Name, signals, freq, s.now()))
}

// LastRun reports when the last evaluation finished and the frequency it resolved.
func (s *Scheduler) LastRun() (time.Time, model.Frequency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastFreq
}

func (s *Scheduler) tick(slot model.Frequency) {
	s.log.Info().Str("slot", string(slot)).Msg("running scheduled evaluation")
	series := s.Collector.CollectAll(s.Watchlist)
	freq := strategy.ResolveFrequency(s.Strategy, series)
	if freq != slot {
		s.log.Debug().Str("slot", string(slot)).Str("frequency", string(freq)).Msg("not due, skipping")
		return
	}
	signals := s.evaluate(series, freq)
	s.trySend(notifier.FormatSignalReport(s.Strategy.Name, signals, freq, s.now()))
}

// Evaluate collects the watchlist and generates, records and counts signals.
func (s *Scheduler) Evaluate() (map[string]model.Signal, model.Frequency) {
	series := s.Collector.CollectAll(s.Watchlist)
	freq := strategy.ResolveFrequency(s.Strategy, series)
	return s.evaluate(series, freq), freq
}

func (s *Scheduler) evaluate(series map[string]model.PriceSeries, freq model.Frequency) map[string]model.Signal {
	now := s.now()
	signals := strategy.GenerateSignals(series, s.Strategy, now)

	tickers := make([]string, 0, len(signals))
	for t := range signals {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, t := range tickers {
		sig := signals[t]
		metrics.SignalsTotal.WithLabelValues(t, string(sig.Signal)).Inc()
		for _, r := range sig.IndicatorResults {
			if r.Err != nil {
				metrics.IndicatorErrorsTotal.WithLabelValues(string(r.Type)).Inc()
			}
		}
		if err := s.Recorder.RecordSignal(sig, freq); err != nil {
			s.log.Error().Err(err).Str("ticker", t).Msg("record signal")
		}
		s.log.Info().
			Str("ticker", t).
			Str("signal", string(sig.Signal)).
			Float64("confidence", sig.Confidence).
			Str("reason", sig.Reason).
			Msg("signal generated")
	}

	s.mu.Lock()
	s.lastRun = now
	s.lastFreq = freq
	s.mu.Unlock()
	return signals
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
