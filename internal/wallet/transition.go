// Package wallet executes cash and share movements for a user as single
// all-or-nothing transitions over an account snapshot.
package wallet

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"PortfolioSentinel/internal/ledger"
	"PortfolioSentinel/internal/model"
)

// Result describes one committed transition. Position is nil for cash
// movements and for sells that closed the position.
type Result struct {
	Wallet      model.Wallet
	Ticker      string
	Position    *model.Position
	Transaction model.Transaction
}

// Buy debits qty*price*(1+commission+slippage) and adds the shares to the
// position at the fill price. acct is not modified.
func Buy(acct model.Account, ticker string, qty, price float64, costs Costs, at time.Time) (model.Account, Result, error) {
	ticker, err := checkTrade(ticker, qty, price, costs)
	if err != nil {
		return acct, Result{}, err
	}

	notional := dec(qty).Mul(dec(price))
	fee := cents(notional.Mul(costs.rate()))
	cost := cents(notional.Add(fee))
	balance := dec(acct.Wallet.Balance)
	if cost.GreaterThan(balance) {
		return acct, Result{}, &InsufficientFundsError{
			UserID:    acct.Wallet.UserID,
			Ticker:    ticker,
			Quantity:  qty,
			Required:  toFloat(cost),
			Available: acct.Wallet.Balance,
		}
	}

	var existing *model.Position
	if p, ok := acct.Positions[ticker]; ok {
		existing = &p
	}
	pos, err := ledger.ApplyBuy(existing, ticker, qty, price, at)
	if err != nil {
		return acct, Result{}, err
	}

	next := acct.Clone()
	next.Positions[ticker] = pos
	next.Wallet.Balance = toFloat(cents(balance.Sub(cost)))
	next.Wallet.TotalTrades++
	next.Wallet.UpdatedAt = at

	tx := newTransaction(next.Wallet.UserID, model.TxBuy, at)
	tx.Ticker = ticker
	tx.Quantity = qty
	tx.Price = price
	tx.Amount = toFloat(cost)
	tx.Fee = toFloat(fee)

	return next, Result{Wallet: next.Wallet, Ticker: ticker, Position: &pos, Transaction: tx}, nil
}

// Sell removes shares through the ledger and credits the proceeds net of
// costs. The realized P&L on the transaction is net of the sell fee.
func Sell(acct model.Account, ticker string, qty, price float64, costs Costs, at time.Time) (model.Account, Result, error) {
	ticker, err := checkTrade(ticker, qty, price, costs)
	if err != nil {
		return acct, Result{}, err
	}

	pos, ok := acct.Positions[ticker]
	if !ok {
		return acct, Result{}, &ledger.InsufficientSharesError{Ticker: ticker, Requested: qty}
	}
	sold, err := ledger.ApplySell(pos, qty, price, at)
	if err != nil {
		return acct, Result{}, err
	}

	notional := dec(qty).Mul(dec(price))
	fee := cents(notional.Mul(costs.rate()))
	proceeds := cents(notional.Sub(fee))
	realized := cents(dec(sold.RealizedPnl).Sub(fee))

	next := acct.Clone()
	if sold.Position == nil {
		delete(next.Positions, ticker)
	} else {
		next.Positions[ticker] = *sold.Position
	}
	w := &next.Wallet
	w.Balance = toFloat(cents(dec(w.Balance).Add(proceeds)))
	w.TotalRealizedPnl = toFloat(cents(dec(w.TotalRealizedPnl).Add(realized)))
	w.TotalTrades++
	if realized.IsPositive() {
		w.WinningTrades++
	}
	w.UpdatedAt = at

	pnl := toFloat(realized)
	tx := newTransaction(w.UserID, model.TxSell, at)
	tx.Ticker = ticker
	tx.Quantity = qty
	tx.Price = price
	tx.Amount = toFloat(proceeds)
	tx.Fee = toFloat(fee)
	tx.RealizedPnl = &pnl

	return next, Result{Wallet: next.Wallet, Ticker: ticker, Position: sold.Position, Transaction: tx}, nil
}

// Deposit adds cash. Amounts are rounded to cents.
func Deposit(acct model.Account, amount float64, at time.Time) (model.Account, Result, error) {
	amt, err := checkAmount(amount)
	if err != nil {
		return acct, Result{}, err
	}
	next := acct.Clone()
	next.Wallet.Balance = toFloat(cents(dec(next.Wallet.Balance).Add(amt)))
	next.Wallet.UpdatedAt = at

	tx := newTransaction(next.Wallet.UserID, model.TxDeposit, at)
	tx.Amount = toFloat(amt)
	return next, Result{Wallet: next.Wallet, Transaction: tx}, nil
}

// Withdraw removes cash, never below zero.
func Withdraw(acct model.Account, amount float64, at time.Time) (model.Account, Result, error) {
	amt, err := checkAmount(amount)
	if err != nil {
		return acct, Result{}, err
	}
	balance := dec(acct.Wallet.Balance)
	if amt.GreaterThan(balance) {
		return acct, Result{}, &InsufficientFundsError{
			UserID:    acct.Wallet.UserID,
			Required:  toFloat(amt),
			Available: acct.Wallet.Balance,
		}
	}
	next := acct.Clone()
	next.Wallet.Balance = toFloat(cents(balance.Sub(amt)))
	next.Wallet.UpdatedAt = at

	tx := newTransaction(next.Wallet.UserID, model.TxWithdrawal, at)
	tx.Amount = toFloat(amt)
	return next, Result{Wallet: next.Wallet, Transaction: tx}, nil
}

func newTransaction(userID string, typ model.TxType, at time.Time) model.Transaction {
	return model.Transaction{ID: uuid.NewString(), UserID: userID, Type: typ, Timestamp: at}
}

func checkTrade(ticker string, qty, price float64, costs Costs) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", ErrInvalidTicker
	}
	if !(qty > 0) || math.IsInf(qty, 0) {
		return "", ledger.ErrInvalidQuantity
	}
	if !(price >= 0) || math.IsInf(price, 0) {
		return "", ledger.ErrInvalidPrice
	}
	return ticker, costs.Validate()
}

func checkAmount(amount float64) (decimal.Decimal, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return decimal.Zero, ErrInvalidAmount
	}
	amt := cents(dec(amount))
	if !amt.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amt, nil
}
