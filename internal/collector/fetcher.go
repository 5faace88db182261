package collector

import "PortfolioSentinel/internal/model"

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(symbol string, days int) ([]model.PriceBar, error)
	FetchQuote(symbol string) (model.Quote, error)
	Name() string
}
