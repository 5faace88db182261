// Package ledger applies fills to positions using weighted-average cost.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"PortfolioSentinel/internal/model"
)

// epsilon absorbs float dust when a sell closes a position.
const epsilon = 1e-9

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidPrice    = errors.New("price must not be negative")
)

// InsufficientSharesError is returned when a sell asks for more shares than are held.
type InsufficientSharesError struct {
	Ticker    string
	Requested float64
	Available float64
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("insufficient shares of %s: requested %g, available %g", e.Ticker, e.Requested, e.Available)
}

// SellResult is the outcome of a sell. Position is nil when the sell closed it.
type SellResult struct {
	Position    *model.Position
	RealizedPnl float64
}

// ApplyBuy adds a fill to pos (nil opens a new long position) and
// recomputes the weighted-average cost.
func ApplyBuy(pos *model.Position, ticker string, shares, price float64, at time.Time) (model.Position, error) {
	if !(shares > 0) {
		return model.Position{}, ErrInvalidQuantity
	}
	if !(price >= 0) {
		return model.Position{}, ErrInvalidPrice
	}
	if pos == nil || pos.Shares <= 0 {
		return model.Position{
			Ticker:    ticker,
			Side:      model.SideLong,
			Shares:    shares,
			AvgCost:   price,
			OpenedAt:  at,
			UpdatedAt: at,
		}, nil
	}
	next := *pos
	total := pos.Shares + shares
	next.AvgCost = (pos.Shares*pos.AvgCost + shares*price) / total
	next.Shares = total
	next.UpdatedAt = at
	return next, nil
}

// ApplySell removes shares from pos at price. The average cost is unchanged.
func ApplySell(pos model.Position, shares, price float64, at time.Time) (SellResult, error) {
	if !(shares > 0) {
		return SellResult{}, ErrInvalidQuantity
	}
	if !(price >= 0) {
		return SellResult{}, ErrInvalidPrice
	}
	if shares > pos.Shares+epsilon {
		return SellResult{}, &InsufficientSharesError{Ticker: pos.Ticker, Requested: shares, Available: pos.Shares}
	}

	realized := shares * (price - pos.AvgCost)
	remaining := pos.Shares - shares
	if remaining <= epsilon {
		return SellResult{RealizedPnl: realized}, nil
	}
	next := pos
	next.Shares = remaining
	next.UpdatedAt = at
	next.UnrealizedPnl = 0
	return SellResult{Position: &next, RealizedPnl: realized}, nil
}

// UnrealizedPnl marks the position to the current price.
func UnrealizedPnl(pos model.Position, currentPrice float64) float64 {
	return pos.Shares * (currentPrice - pos.AvgCost)
}

// MarkToMarket returns a copy of pos with UnrealizedPnl set for currentPrice.
func MarkToMarket(pos model.Position, currentPrice float64) model.Position {
	pos.UnrealizedPnl = UnrealizedPnl(pos, currentPrice)
	return pos
}
