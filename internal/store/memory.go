package store

import (
	"context"
	"sync"

	"PortfolioSentinel/internal/model"
)

// MemoryStore keeps everything in process memory. Used by tests and dry runs.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]model.Account
	txs      map[string][]model.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]model.Account),
		txs:      make(map[string][]model.Transaction),
	}
}

func (m *MemoryStore) Load(_ context.Context, userID string) (model.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, ok := m.accounts[userID]
	if !ok {
		return model.Account{}, false, nil
	}
	return acct.Clone(), true, nil
}

func (m *MemoryStore) Commit(_ context.Context, acct model.Account, tx model.Transaction) error {
	if err := checkCommit(acct, tx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[acct.Wallet.UserID] = acct.Clone()
	m.txs[tx.UserID] = append(m.txs[tx.UserID], tx)
	return nil
}

func (m *MemoryStore) Transactions(_ context.Context, userID string) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Transaction(nil), m.txs[userID]...), nil
}

func (m *MemoryStore) Close() error { return nil }
