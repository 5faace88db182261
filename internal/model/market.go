package model

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrDuplicateBar is returned when a series contains two bars for the same date.
var ErrDuplicateBar = errors.New("duplicate bar date")

// PriceBar represents a single daily OHLCV bar.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the ordered bars of one ticker, oldest first.
type PriceSeries struct {
	Ticker string     `json:"ticker"`
	Bars   []PriceBar `json:"bars"`
}

// NewPriceSeries copies and sorts the bars ascending by date.
// Two bars on the same date are rejected.
func NewPriceSeries(ticker string, bars []PriceBar) (PriceSeries, error) {
	sorted := make([]PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return PriceSeries{}, fmt.Errorf("%s %s: %w", ticker, sorted[i].Date.Format("2006-01-02"), ErrDuplicateBar)
		}
	}
	return PriceSeries{Ticker: ticker, Bars: sorted}, nil
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Closes extracts the close prices in order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar and false when the series is empty.
func (s PriceSeries) Last() (PriceBar, bool) {
	if len(s.Bars) == 0 {
		return PriceBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Quote is a point-in-time price supplied by the market-data side.
type Quote struct {
	Ticker    string    `json:"ticker"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}
