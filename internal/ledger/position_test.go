package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PortfolioSentinel/internal/model"
)

var at = time.Date(2025, 6, 2, 15, 30, 0, 0, time.UTC)

func TestApplyBuy_OpensPosition(t *testing.T) {
	pos, err := ApplyBuy(nil, "AAPL", 10, 150, at)
	require.NoError(t, err)
	require.Equal(t, "AAPL", pos.Ticker)
	require.Equal(t, model.SideLong, pos.Side)
	require.Equal(t, 10.0, pos.Shares)
	require.Equal(t, 150.0, pos.AvgCost)
	require.Equal(t, at, pos.OpenedAt)
}

func TestApplyBuy_WeightedAverage(t *testing.T) {
	pos, err := ApplyBuy(nil, "AAPL", 10, 100, at)
	require.NoError(t, err)
	pos, err = ApplyBuy(&pos, "AAPL", 30, 120, at.Add(time.Hour))
	require.NoError(t, err)

	require.Equal(t, 40.0, pos.Shares)
	require.InDelta(t, 115.0, pos.AvgCost, 1e-9, "(10*100 + 30*120) / 40")
	require.Equal(t, at, pos.OpenedAt, "open time survives adds")
}

func TestApplyBuy_DoesNotMutateInput(t *testing.T) {
	orig := model.Position{Ticker: "MSFT", Side: model.SideLong, Shares: 5, AvgCost: 300}
	_, err := ApplyBuy(&orig, "MSFT", 5, 320, at)
	require.NoError(t, err)
	require.Equal(t, 5.0, orig.Shares)
	require.Equal(t, 300.0, orig.AvgCost)
}

func TestApplyBuy_RejectsBadInput(t *testing.T) {
	_, err := ApplyBuy(nil, "AAPL", 0, 100, at)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = ApplyBuy(nil, "AAPL", 1, -1, at)
	require.ErrorIs(t, err, ErrInvalidPrice)
}

func TestApplySell_KeepsAvgCost(t *testing.T) {
	pos := model.Position{Ticker: "AAPL", Side: model.SideLong, Shares: 40, AvgCost: 115}
	res, err := ApplySell(pos, 10, 130, at)
	require.NoError(t, err)
	require.NotNil(t, res.Position)
	require.Equal(t, 30.0, res.Position.Shares)
	require.Equal(t, 115.0, res.Position.AvgCost)
	require.InDelta(t, 150.0, res.RealizedPnl, 1e-9)
}

func TestApplySell_Insufficient(t *testing.T) {
	pos := model.Position{Ticker: "AAPL", Shares: 5, AvgCost: 100}
	_, err := ApplySell(pos, 6, 100, at)

	var ise *InsufficientSharesError
	require.True(t, errors.As(err, &ise))
	require.Equal(t, "AAPL", ise.Ticker)
	require.Equal(t, 6.0, ise.Requested)
	require.Equal(t, 5.0, ise.Available)
}

func TestBuyThenSellSameQuantityClosesFlat(t *testing.T) {
	pos, err := ApplyBuy(nil, "NVDA", 7, 412.35, at)
	require.NoError(t, err)
	res, err := ApplySell(pos, 7, 412.35, at)
	require.NoError(t, err)
	require.Nil(t, res.Position, "position removed at zero shares")
	require.Equal(t, 0.0, res.RealizedPnl)
}

func TestUnrealizedPnl(t *testing.T) {
	pos := model.Position{Ticker: "AAPL", Shares: 10, AvgCost: 100}
	require.Equal(t, 50.0, UnrealizedPnl(pos, 105))
	require.Equal(t, -100.0, UnrealizedPnl(pos, 90))

	marked := MarkToMarket(pos, 105)
	require.Equal(t, 50.0, marked.UnrealizedPnl)
	require.Equal(t, 0.0, pos.UnrealizedPnl)
}
