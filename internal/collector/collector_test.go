package collector

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"PortfolioSentinel/internal/model"
)

var day = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

func TestCollectAll_FailuresBecomeEmptySeries(t *testing.T) {
	m := &MockFetcher{
		Price: 100,
		Now:   day,
		Errs:  map[string]error{"BAD": errors.New("boom")},
		Bars: map[string][]model.PriceBar{
			"DUP": {{Date: day, Close: 1}, {Date: day, Close: 2}},
		},
	}
	c := NewCollector(m, 60, zerolog.Nop())
	got := c.CollectAll([]string{"AAPL", "BAD", "DUP"})

	require.Len(t, got, 3)
	require.Equal(t, 60, got["AAPL"].Len())
	require.Equal(t, 0, got["BAD"].Len())
	require.Equal(t, "BAD", got["BAD"].Ticker)
	require.Equal(t, 0, got["DUP"].Len(), "duplicate dates are rejected")

	last, ok := got["AAPL"].Last()
	require.True(t, ok)
	require.True(t, last.Date.Equal(day))
}

func TestCollect_SortsBars(t *testing.T) {
	m := &MockFetcher{Bars: map[string][]model.PriceBar{
		"X": {{Date: day.AddDate(0, 0, 2), Close: 3}, {Date: day, Close: 1}, {Date: day.AddDate(0, 0, 1), Close: 2}},
	}}
	s, err := NewCollector(m, 0, zerolog.Nop()).Collect("X")
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, s.Closes())
}

func TestQuotes_SkipsFailures(t *testing.T) {
	m := &MockFetcher{Price: 42, Errs: map[string]error{"BAD": errors.New("down")}}
	got := NewCollector(m, 0, zerolog.Nop()).Quotes([]string{"AAPL", "BAD"})
	require.Equal(t, map[string]float64{"AAPL": 42}, got)
}

func TestYahooFetcher_ParsesChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/^GSPC" {
			http.Error(w, "unexpected path "+r.URL.Path, http.StatusBadRequest)
			return
		}
		ts1 := day.Add(14 * time.Hour).Unix()
		ts2 := day.AddDate(0, 0, 1).Add(14 * time.Hour).Unix()
		ts3 := day.AddDate(0, 0, 2).Add(14 * time.Hour).Unix()
		fmt.Fprintf(w, `{"chart":{"result":[{"meta":{"regularMarketPrice":5010.5,"regularMarketTime":%d},
			"timestamp":[%d,%d,%d],
			"indicators":{"quote":[{"open":[1,null,3],"high":[1,null,3],"low":[1,null,3],"close":[4990,null,5010],"volume":[10,null,30]}]}}],"error":null}}`,
			ts3, ts1, ts2, ts3)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyBars("SPX", 10)
	require.NoError(t, err)
	require.Len(t, bars, 2, "null bar skipped")
	require.True(t, bars[0].Date.Equal(day))
	require.Equal(t, 5010.0, bars[1].Close)

	q, err := f.FetchQuote("SPX")
	require.NoError(t, err)
	require.Equal(t, 5010.5, q.Price)
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchDailyBars("NOPE", 10)
	require.ErrorContains(t, err, "No data found")
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k" || r.URL.Query().Get("symbol") != "MSFT" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		switch r.URL.Path {
		case "/api/v1/bars/daily":
			fmt.Fprintf(w, `[{"timestamp":%d,"open":1,"high":2,"low":0.5,"close":1.5,"volume":100}]`, day.Unix())
		case "/api/v1/quote":
			fmt.Fprint(w, `{"price":412.5}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "k", "")
	bars, err := f.FetchDailyBars("MSFT", 5)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	require.Equal(t, 1.5, bars[0].Close)

	q, err := f.FetchQuote("MSFT")
	require.NoError(t, err)
	require.Equal(t, 412.5, q.Price)
}
