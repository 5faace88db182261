package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signals generated per ticker and action"},
		[]string{"ticker", "signal"},
	)
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trades_total", Help: "Wallet transactions committed"},
		[]string{"type"},
	)
	TradeRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trade_rejections_total", Help: "Wallet operations rejected"},
		[]string{"reason"},
	)
	IndicatorErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "indicator_errors_total", Help: "Indicators that could not be computed"},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(SignalsTotal, TradesTotal, TradeRejectionsTotal, IndicatorErrorsTotal)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
