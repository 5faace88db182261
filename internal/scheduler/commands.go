package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"PortfolioSentinel/internal/notifier"
	"PortfolioSentinel/internal/wallet"
)

const helpText = `Available commands:
• /signals
• /wallet &lt;user&gt;
• /deposit &lt;user&gt; &lt;amount&gt;
• /withdraw &lt;user&gt; &lt;amount&gt;
• /buy &lt;user&gt; &lt;ticker&gt; &lt;qty&gt;
• /sell &lt;user&gt; &lt;ticker&gt; &lt;qty&gt;`

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "/signals":
		signals, freq := s.Evaluate()
		return notifier.FormatSignalReport(s.Strategy.Name, signals, freq, s.now())
	case "/wallet":
		if len(args) != 1 {
			return "usage: /wallet &lt;user&gt;"
		}
		return s.walletStatus(args[0])
	case "/deposit", "/withdraw":
		if len(args) != 2 {
			return fmt.Sprintf("usage: %s &lt;user&gt; &lt;amount&gt;", fields[0])
		}
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Sprintf("❌ invalid amount %q", args[1])
		}
		op := s.Wallet.Deposit
		if strings.EqualFold(fields[0], "/withdraw") {
			op = s.Wallet.Withdraw
		}
		return reply(op(s.Ctx, args[0], amount))
	case "/buy", "/sell":
		if len(args) != 3 {
			return fmt.Sprintf("usage: %s &lt;user&gt; &lt;ticker&gt; &lt;qty&gt;", fields[0])
		}
		return s.trade(strings.ToLower(fields[0]), args[0], strings.ToUpper(args[1]), args[2])
	default:
		return helpText
	}
}

func (s *Scheduler) trade(op, user, ticker, qtyArg string) string {
	qty, err := strconv.Atoi(qtyArg)
	if err != nil || qty <= 0 {
		return fmt.Sprintf("❌ quantity must be a positive whole number, got %q", qtyArg)
	}
	quote, err := s.Collector.Quote(ticker)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("quote for trade")
		return fmt.Sprintf("❌ no price for %s", ticker)
	}
	if op == "/buy" {
		return reply(s.Wallet.Buy(s.Ctx, user, ticker, float64(qty), quote.Price))
	}
	return reply(s.Wallet.Sell(s.Ctx, user, ticker, float64(qty), quote.Price))
}

func (s *Scheduler) walletStatus(user string) string {
	acct, err := s.Wallet.Account(s.Ctx, user)
	if errors.Is(err, wallet.ErrNotFound) {
		return fmt.Sprintf("No wallet for %s yet. Use /deposit first.", user)
	}
	if err != nil {
		return "❌ " + err.Error()
	}
	tickers := make([]string, 0, len(acct.Positions))
	for t := range acct.Positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	pf, err := s.Wallet.Portfolio(s.Ctx, user, s.Collector.Quotes(tickers))
	if err != nil {
		return "❌ " + err.Error()
	}
	return notifier.FormatPortfolio(pf)
}

func reply(res wallet.Result, err error) string {
	if err != nil {
		return "❌ " + err.Error()
	}
	return notifier.FormatTransaction(res)
}
