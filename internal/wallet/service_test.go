package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"PortfolioSentinel/internal/model"
	"PortfolioSentinel/internal/store"
)

func newTestService(t *testing.T, costs Costs) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc, err := NewService(st, costs, zerolog.Nop())
	require.NoError(t, err)
	return svc, st
}

func TestNewService_RejectsBadCosts(t *testing.T) {
	_, err := NewService(store.NewMemoryStore(), Costs{Commission: -0.1}, zerolog.Nop())
	require.ErrorIs(t, err, ErrInvalidCosts)
}

func TestService_DepositBuySell(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, Costs{})

	_, err := svc.Deposit(ctx, "alice", 2000)
	require.NoError(t, err)
	res, err := svc.Buy(ctx, "alice", "AAPL", 10, 150)
	require.NoError(t, err)
	require.Equal(t, 500.0, res.Wallet.Balance)

	res, err = svc.Sell(ctx, "alice", "AAPL", 4, 160)
	require.NoError(t, err)
	require.Equal(t, 1140.0, res.Wallet.Balance)
	require.Equal(t, 6.0, res.Position.Shares)

	acct, found, err := st.Load(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1140.0, acct.Wallet.Balance)
	require.Equal(t, 40.0, acct.Wallet.TotalRealizedPnl)

	txs, err := svc.History(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, txs, 3)

	replayed, err := Replay("alice", txs)
	require.NoError(t, err)
	require.Equal(t, acct.Wallet.Balance, replayed.Wallet.Balance)
	require.Equal(t, acct.Wallet.TotalRealizedPnl, replayed.Wallet.TotalRealizedPnl)
	require.Equal(t, acct.Positions["AAPL"].Shares, replayed.Positions["AAPL"].Shares)
}

func TestService_RejectedOperationCommitsNothing(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, Costs{})

	_, err := svc.Buy(ctx, "carol", "AAPL", 1, 10)
	var ife *InsufficientFundsError
	require.True(t, errors.As(err, &ife))

	_, found, err := st.Load(ctx, "carol")
	require.NoError(t, err)
	require.False(t, found, "wallet only created by a committed operation")

	_, err = svc.Account(ctx, "carol")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Deposit(ctx, "", 10)
	require.ErrorIs(t, err, ErrInvalidUser)
}

func TestService_ConcurrentBuysNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Costs{})
	_, err := svc.Deposit(ctx, "alice", 1000)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Buy(ctx, "alice", "AAPL", 1, 100)
			mu.Lock()
			defer mu.Unlock()
			var ife *InsufficientFundsError
			switch {
			case err == nil:
				ok++
			case errors.As(err, &ife):
				fail++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 10, ok)
	require.Equal(t, 40, fail)
	acct, err := svc.Account(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 0.0, acct.Wallet.Balance)
	require.Equal(t, 10.0, acct.Positions["AAPL"].Shares)
	require.Equal(t, 10, acct.Wallet.TotalTrades)
}

func TestService_UsersAreIndependent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Costs{})

	var wg sync.WaitGroup
	for u := 0; u < 8; u++ {
		user := fmt.Sprintf("user-%d", u)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Deposit(ctx, user, 500); err != nil {
				t.Errorf("%s deposit: %v", user, err)
				return
			}
			for i := 0; i < 5; i++ {
				if _, err := svc.Buy(ctx, user, "SPY", 1, 100); err != nil {
					t.Errorf("%s buy %d: %v", user, i, err)
				}
			}
		}()
	}
	wg.Wait()

	for u := 0; u < 8; u++ {
		acct, err := svc.Account(ctx, fmt.Sprintf("user-%d", u))
		require.NoError(t, err)
		require.Equal(t, 0.0, acct.Wallet.Balance)
		require.Equal(t, 5.0, acct.Positions["SPY"].Shares)
	}
}

func TestService_Portfolio(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Costs{})
	svc.now = func() time.Time { return t0 }

	_, err := svc.Deposit(ctx, "alice", 10000)
	require.NoError(t, err)
	_, err = svc.Buy(ctx, "alice", "MSFT", 2, 300)
	require.NoError(t, err)
	_, err = svc.Buy(ctx, "alice", "AAPL", 10, 100)
	require.NoError(t, err)

	pf, err := svc.Portfolio(ctx, "alice", map[string]float64{"AAPL": 110})
	require.NoError(t, err)
	require.Len(t, pf.Positions, 2)
	require.Equal(t, "AAPL", pf.Positions[0].Ticker)
	require.Equal(t, 100.0, pf.Positions[0].UnrealizedPnl)
	require.Equal(t, 0.0, pf.Positions[1].UnrealizedPnl, "no quote: valued at cost")
	require.Equal(t, 1700.0, pf.MarketValue)
	require.Equal(t, 100.0, pf.UnrealizedPnl)
	require.Equal(t, 8400.0, pf.Wallet.Balance)
	require.Equal(t, 10100.0, pf.Equity)

	_, err = svc.Portfolio(ctx, "nobody", nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRejectionReason(t *testing.T) {
	require.Equal(t, "insufficient_funds", rejectionReason(&InsufficientFundsError{}))
	require.Equal(t, "invalid_request", rejectionReason(ErrInvalidAmount))
	_, _, err := Sell(model.NewAccount("a", t0), "AAPL", 1, 1, Costs{}, t0)
	require.Equal(t, "insufficient_shares", rejectionReason(err))
}
