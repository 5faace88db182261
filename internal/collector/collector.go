// Package collector fetches daily bars and quotes for the watchlist.
package collector

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"PortfolioSentinel/internal/model"
)

// DefaultHistoryDays covers the slowest preset indicator (SMA200) with margin.
const DefaultHistoryDays = 300

// MockFetcher returns controllable fixed data for development and testing.
// Symbols missing from Bars get a generated gently rising series around Price.
type MockFetcher struct {
	Price float64
	Bars  map[string][]model.PriceBar
	Errs  map[string]error
	Now   time.Time

	mu    sync.Mutex
	calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(symbol string, days int) ([]model.PriceBar, error) {
	m.count()
	if err := m.Errs[symbol]; err != nil {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	return generateMockBars(m.now(), m.Price, days), nil
}

func (m *MockFetcher) FetchQuote(symbol string) (model.Quote, error) {
	m.count()
	if err := m.Errs[symbol]; err != nil {
		return model.Quote{}, err
	}
	price := m.Price
	if bars, ok := m.Bars[symbol]; ok && len(bars) > 0 {
		price = bars[len(bars)-1].Close
	}
	return model.Quote{Ticker: symbol, Price: price, Timestamp: m.now()}, nil
}

// Calls reports how many fetches were made.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockFetcher) count() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *MockFetcher) now() time.Time {
	if m.Now.IsZero() {
		return time.Now().UTC()
	}
	return m.Now
}

func generateMockBars(end time.Time, basePrice float64, count int) []model.PriceBar {
	end = truncateDay(end)
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Date:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector turns fetcher output into validated price series.
type Collector struct {
	Fetcher Fetcher
	Days    int
	log     zerolog.Logger
}

// NewCollector creates a new Collector. days <= 0 uses DefaultHistoryDays.
func NewCollector(fetcher Fetcher, days int, log zerolog.Logger) *Collector {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	return &Collector{
		Fetcher: fetcher,
		Days:    days,
		log:     log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// Collect fetches and validates the daily history of one symbol.
func (c *Collector) Collect(symbol string) (model.PriceSeries, error) {
	bars, err := c.Fetcher.FetchDailyBars(symbol, c.Days)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch daily bars for %s: %w", symbol, err)
	}
	series, err := model.NewPriceSeries(symbol, bars)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("validate %s: %w", symbol, err)
	}
	return series, nil
}

// CollectAll fetches every symbol. A symbol that fails is logged and mapped
// to an empty series, which strategy evaluation turns into a hold.
func (c *Collector) CollectAll(symbols []string) map[string]model.PriceSeries {
	out := make(map[string]model.PriceSeries, len(symbols))
	for _, sym := range symbols {
		series, err := c.Collect(sym)
		if err != nil {
			c.log.Warn().Err(err).Str("ticker", sym).Msg("collect failed, evaluating with no history")
			out[sym] = model.PriceSeries{Ticker: sym}
			continue
		}
		c.log.Debug().Str("ticker", sym).Int("bars", series.Len()).Msg("collected")
		out[sym] = series
	}
	return out
}

// Quote fetches the current price of one symbol.
func (c *Collector) Quote(symbol string) (model.Quote, error) {
	q, err := c.Fetcher.FetchQuote(symbol)
	if err != nil {
		return model.Quote{}, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}
	if !(q.Price > 0) {
		return model.Quote{}, fmt.Errorf("fetch quote for %s: non-positive price %v", symbol, q.Price)
	}
	return q, nil
}

// Quotes returns the prices it could fetch; failures are logged and omitted.
func (c *Collector) Quotes(symbols []string) map[string]float64 {
	out := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		q, err := c.Quote(sym)
		if err != nil {
			c.log.Warn().Err(err).Str("ticker", sym).Msg("quote unavailable")
			continue
		}
		out[sym] = q.Price
	}
	return out
}
