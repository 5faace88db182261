package wallet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"PortfolioSentinel/internal/ledger"
	"PortfolioSentinel/internal/metrics"
	"PortfolioSentinel/internal/model"
	"PortfolioSentinel/internal/store"
)

// Service serializes operations per user and commits each transition
// through the store. Different users proceed in parallel.
type Service struct {
	store store.Store
	costs Costs
	log   zerolog.Logger
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService validates costs and returns a Service backed by st.
func NewService(st store.Store, costs Costs, log zerolog.Logger) (*Service, error) {
	if err := costs.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		store: st,
		costs: costs,
		log:   log.With().Str("component", "wallet").Logger(),
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Costs returns the frictions applied to trades.
func (s *Service) Costs() Costs { return s.costs }

func (s *Service) Buy(ctx context.Context, userID, ticker string, qty, price float64) (Result, error) {
	return s.apply(ctx, userID, "buy", func(acct model.Account, at time.Time) (model.Account, Result, error) {
		return Buy(acct, ticker, qty, price, s.costs, at)
	})
}

func (s *Service) Sell(ctx context.Context, userID, ticker string, qty, price float64) (Result, error) {
	return s.apply(ctx, userID, "sell", func(acct model.Account, at time.Time) (model.Account, Result, error) {
		return Sell(acct, ticker, qty, price, s.costs, at)
	})
}

func (s *Service) Deposit(ctx context.Context, userID string, amount float64) (Result, error) {
	return s.apply(ctx, userID, "deposit", func(acct model.Account, at time.Time) (model.Account, Result, error) {
		return Deposit(acct, amount, at)
	})
}

func (s *Service) Withdraw(ctx context.Context, userID string, amount float64) (Result, error) {
	return s.apply(ctx, userID, "withdraw", func(acct model.Account, at time.Time) (model.Account, Result, error) {
		return Withdraw(acct, amount, at)
	})
}

// Account returns the stored account, or ErrNotFound.
func (s *Service) Account(ctx context.Context, userID string) (model.Account, error) {
	unlock := s.lock(userID)
	defer unlock()

	acct, found, err := s.store.Load(ctx, userID)
	if err != nil {
		return model.Account{}, fmt.Errorf("load wallet %s: %w", userID, err)
	}
	if !found {
		return model.Account{}, ErrNotFound
	}
	return acct, nil
}

// History returns the user's transactions oldest first.
func (s *Service) History(ctx context.Context, userID string) ([]model.Transaction, error) {
	return s.store.Transactions(ctx, userID)
}

// Portfolio is an account marked to market.
type Portfolio struct {
	Wallet        model.Wallet
	Positions     []model.Position
	MarketValue   float64
	UnrealizedPnl float64
	Equity        float64
}

// Portfolio marks every position to quotes. Positions without a quote are
// valued at their average cost.
func (s *Service) Portfolio(ctx context.Context, userID string, quotes map[string]float64) (Portfolio, error) {
	acct, err := s.Account(ctx, userID)
	if err != nil {
		return Portfolio{}, err
	}

	pf := Portfolio{Wallet: acct.Wallet}
	for _, pos := range acct.Positions {
		price, ok := quotes[pos.Ticker]
		if !ok {
			price = pos.AvgCost
		}
		marked := ledger.MarkToMarket(pos, price)
		pf.Positions = append(pf.Positions, marked)
		pf.MarketValue += marked.Shares * price
		pf.UnrealizedPnl += marked.UnrealizedPnl
	}
	sort.Slice(pf.Positions, func(i, j int) bool { return pf.Positions[i].Ticker < pf.Positions[j].Ticker })
	pf.Equity = acct.Wallet.Balance + pf.MarketValue
	return pf, nil
}

type transition func(model.Account, time.Time) (model.Account, Result, error)

func (s *Service) apply(ctx context.Context, userID, op string, fn transition) (Result, error) {
	if userID == "" {
		return Result{}, ErrInvalidUser
	}
	unlock := s.lock(userID)
	defer unlock()

	acct, found, err := s.store.Load(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("load wallet %s: %w", userID, err)
	}
	at := s.now()
	if !found {
		acct = model.NewAccount(userID, at)
	}

	next, res, err := fn(acct, at)
	if err != nil {
		metrics.TradeRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
		s.log.Warn().Err(err).Str("user", userID).Str("op", op).Msg("wallet operation rejected")
		return Result{}, err
	}
	if err := s.store.Commit(ctx, next, res.Transaction); err != nil {
		return Result{}, fmt.Errorf("commit %s for %s: %w", op, userID, err)
	}

	metrics.TradesTotal.WithLabelValues(string(res.Transaction.Type)).Inc()
	s.log.Info().
		Str("user", userID).
		Str("op", op).
		Str("ticker", res.Ticker).
		Float64("amount", res.Transaction.Amount).
		Float64("balance", res.Wallet.Balance).
		Str("tx", res.Transaction.ID).
		Msg("wallet operation committed")
	return res, nil
}

// lock acquires the mutex for userID and returns its release.
func (s *Service) lock(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func rejectionReason(err error) string {
	var funds *InsufficientFundsError
	var shares *ledger.InsufficientSharesError
	switch {
	case errors.As(err, &funds):
		return "insufficient_funds"
	case errors.As(err, &shares):
		return "insufficient_shares"
	default:
		return "invalid_request"
	}
}
