package wallet

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidTicker = errors.New("ticker must not be empty")
	ErrInvalidUser   = errors.New("user id must not be empty")
	ErrInvalidCosts  = errors.New("commission and slippage must be non-negative and sum below 1")
	ErrNotFound      = errors.New("wallet not found")
)

// InsufficientFundsError is returned when a buy or withdrawal needs more cash
// than the wallet holds. Ticker is empty for withdrawals.
type InsufficientFundsError struct {
	UserID    string
	Ticker    string
	Quantity  float64
	Required  float64
	Available float64
}

func (e *InsufficientFundsError) Error() string {
	if e.Ticker == "" {
		return fmt.Sprintf("insufficient funds: required %.2f, available %.2f", e.Required, e.Available)
	}
	return fmt.Sprintf("insufficient funds to buy %g %s: required %.2f, available %.2f",
		e.Quantity, e.Ticker, e.Required, e.Available)
}
