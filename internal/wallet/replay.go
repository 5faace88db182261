package wallet

import (
	"fmt"
	"time"

	"PortfolioSentinel/internal/ledger"
	"PortfolioSentinel/internal/model"
)

// Replay rebuilds an account from its transaction log in order. Amounts and
// realized P&L are taken from the log as recorded, so the result matches the
// state the transitions produced.
func Replay(userID string, txs []model.Transaction) (model.Account, error) {
	var created time.Time
	if len(txs) > 0 {
		created = txs[0].Timestamp
	}
	acct := model.NewAccount(userID, created)
	w := &acct.Wallet

	for i, tx := range txs {
		if tx.UserID != userID {
			return model.Account{}, fmt.Errorf("transaction %d (%s): belongs to %q", i, tx.ID, tx.UserID)
		}
		balance := dec(w.Balance)
		switch tx.Type {
		case model.TxDeposit:
			w.Balance = toFloat(cents(balance.Add(dec(tx.Amount))))

		case model.TxWithdrawal:
			w.Balance = toFloat(cents(balance.Sub(dec(tx.Amount))))

		case model.TxBuy:
			var existing *model.Position
			if p, ok := acct.Positions[tx.Ticker]; ok {
				existing = &p
			}
			pos, err := ledger.ApplyBuy(existing, tx.Ticker, tx.Quantity, tx.Price, tx.Timestamp)
			if err != nil {
				return model.Account{}, fmt.Errorf("transaction %d (%s): %w", i, tx.ID, err)
			}
			acct.Positions[tx.Ticker] = pos
			w.Balance = toFloat(cents(balance.Sub(dec(tx.Amount))))
			w.TotalTrades++

		case model.TxSell:
			pos, ok := acct.Positions[tx.Ticker]
			if !ok {
				return model.Account{}, fmt.Errorf("transaction %d (%s): %w", i, tx.ID,
					&ledger.InsufficientSharesError{Ticker: tx.Ticker, Requested: tx.Quantity})
			}
			sold, err := ledger.ApplySell(pos, tx.Quantity, tx.Price, tx.Timestamp)
			if err != nil {
				return model.Account{}, fmt.Errorf("transaction %d (%s): %w", i, tx.ID, err)
			}
			if sold.Position == nil {
				delete(acct.Positions, tx.Ticker)
			} else {
				acct.Positions[tx.Ticker] = *sold.Position
			}
			w.Balance = toFloat(cents(balance.Add(dec(tx.Amount))))
			w.TotalTrades++
			if tx.RealizedPnl != nil {
				w.TotalRealizedPnl = toFloat(cents(dec(w.TotalRealizedPnl).Add(dec(*tx.RealizedPnl))))
				if *tx.RealizedPnl > 0 {
					w.WinningTrades++
				}
			}

		default:
			return model.Account{}, fmt.Errorf("transaction %d (%s): unknown type %q", i, tx.ID, tx.Type)
		}
		if w.Balance < 0 {
			return model.Account{}, fmt.Errorf("transaction %d (%s): balance would go negative", i, tx.ID)
		}
		w.UpdatedAt = tx.Timestamp
	}
	return acct, nil
}
