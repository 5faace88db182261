package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"PortfolioSentinel/internal/model"
	"PortfolioSentinel/internal/wallet"
)

func actionIcon(a model.Action) string {
	switch a {
	case model.ActionBuy:
		return "🟢"
	case model.ActionSell:
		return "🔴"
	default:
		return "⚪"
	}
}

// FormatSignalReport formats one evaluation run into a Telegram message.
func FormatSignalReport(strategyName string, signals map[string]model.Signal, freq model.Frequency, now time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>PortfolioSentinel signals</b> | %s\n", now.Format("2006-01-02")))
	if strategyName != "" {
		b.WriteString(fmt.Sprintf("Strategy: %s | rebalance %s\n", html.EscapeString(strategyName), freq))
	} else {
		b.WriteString(fmt.Sprintf("Rebalance: %s\n", freq))
	}
	b.WriteString("\n")

	if len(signals) == 0 {
		b.WriteString("No tickers on the watchlist.\n")
		return b.String()
	}

	tickers := make([]string, 0, len(signals))
	for t := range signals {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, t := range tickers {
		b.WriteString(FormatSignal(signals[t]))
	}
	return b.String()
}

// FormatSignal renders one ticker's signal with its indicator readings.
func FormatSignal(sig model.Signal) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s</b>: %s (confidence %.2f)\n",
		actionIcon(sig.Signal), html.EscapeString(sig.Ticker), strings.ToUpper(string(sig.Signal)), sig.Confidence))
	if sig.Reason != "" {
		b.WriteString(fmt.Sprintf("   %s\n", html.EscapeString(sig.Reason)))
	}
	for _, r := range sig.IndicatorResults {
		if !r.OK() {
			continue
		}
		b.WriteString(fmt.Sprintf("   • %s %s → %s (%.2f)\n",
			r.Type.DisplayName(), formatValue(r.Value), r.Signal, r.Strength))
	}
	return b.String()
}

func formatValue(v model.IndicatorValue) string {
	switch val := v.(type) {
	case model.Scalar:
		return fmt.Sprintf("%.2f", float64(val))
	case model.MACDValue:
		return fmt.Sprintf("%.3f/%.3f hist %+.3f", val.MACD, val.Signal, val.Histogram)
	case model.BandsValue:
		return fmt.Sprintf("[%.2f %.2f %.2f]", val.Lower, val.Middle, val.Upper)
	default:
		return "n/a"
	}
}

// FormatPortfolio formats a wallet marked to market.
func FormatPortfolio(pf wallet.Portfolio) string {
	w := pf.Wallet
	var b strings.Builder
	b.WriteString(fmt.Sprintf("👛 <b>Wallet %s</b>\n\n", html.EscapeString(w.UserID)))
	b.WriteString(fmt.Sprintf("Cash: $%.2f\n", w.Balance))
	b.WriteString(fmt.Sprintf("Market value: $%.2f\n", pf.MarketValue))
	b.WriteString(fmt.Sprintf("Equity: $%.2f\n", pf.Equity))
	b.WriteString(fmt.Sprintf("Unrealized P&amp;L: %+.2f\n", pf.UnrealizedPnl))
	b.WriteString(fmt.Sprintf("Realized P&amp;L: %+.2f\n", w.TotalRealizedPnl))
	b.WriteString(fmt.Sprintf("Trades: %d | winning sells: %d\n", w.TotalTrades, w.WinningTrades))

	if len(pf.Positions) > 0 {
		b.WriteString("\n<b>Positions:</b>\n")
		for _, p := range pf.Positions {
			b.WriteString(fmt.Sprintf("  %s %g @ %.2f (%+.2f)\n", p.Ticker, p.Shares, p.AvgCost, p.UnrealizedPnl))
		}
	}
	return b.String()
}

// FormatTransaction confirms a committed wallet operation.
func FormatTransaction(res wallet.Result) string {
	tx := res.Transaction
	var b strings.Builder
	switch tx.Type {
	case model.TxBuy, model.TxSell:
		b.WriteString(fmt.Sprintf("✅ %s %g %s @ %.2f\n", strings.ToUpper(string(tx.Type)), tx.Quantity, tx.Ticker, tx.Price))
		b.WriteString(fmt.Sprintf("Amount: $%.2f (fees $%.2f)\n", tx.Amount, tx.Fee))
		if tx.RealizedPnl != nil {
			b.WriteString(fmt.Sprintf("Realized P&amp;L: %+.2f\n", *tx.RealizedPnl))
		}
		if res.Position != nil {
			b.WriteString(fmt.Sprintf("Position: %g @ %.2f\n", res.Position.Shares, res.Position.AvgCost))
		} else if tx.Type == model.TxSell {
			b.WriteString("Position closed\n")
		}
	default:
		b.WriteString(fmt.Sprintf("✅ %s $%.2f\n", strings.ToUpper(string(tx.Type)), tx.Amount))
	}
	b.WriteString(fmt.Sprintf("Cash: $%.2f", res.Wallet.Balance))
	return b.String()
}
