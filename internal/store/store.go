// Package store persists wallet accounts and their append-only transaction log.
package store

import (
	"context"
	"errors"

	"PortfolioSentinel/internal/model"
)

// ErrMismatchedUser is returned when a transaction does not belong to the account being committed.
var ErrMismatchedUser = errors.New("transaction user does not match account")

// Store loads and commits accounts. Commit must persist the account state
// and append the transaction as one unit: either both are visible or neither.
type Store interface {
	Load(ctx context.Context, userID string) (model.Account, bool, error)
	Commit(ctx context.Context, acct model.Account, tx model.Transaction) error
	Transactions(ctx context.Context, userID string) ([]model.Transaction, error)
	Close() error
}

func checkCommit(acct model.Account, tx model.Transaction) error {
	if tx.UserID != acct.Wallet.UserID {
		return ErrMismatchedUser
	}
	return nil
}
