package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"PortfolioSentinel/internal/model"
)

// fileState is the on-disk layout of a FileStore.
type fileState struct {
	Accounts     map[string]model.Account       `json:"accounts"`
	Transactions map[string][]model.Transaction `json:"transactions"`
}

// FileStore keeps all accounts in a single JSON file. Every commit rewrites
// the file through a temp file and rename, so a crash leaves either the old
// or the new state on disk.
type FileStore struct {
	mu    sync.Mutex
	path  string
	state fileState
}

// NewFileStore loads the state file, starting empty if it doesn't exist.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	state, err := loadState(path)
	if err != nil {
		return nil, err
	}
	s.state = state
	return s, nil
}

func loadState(path string) (fileState, error) {
	state := fileState{
		Accounts:     make(map[string]model.Account),
		Transactions: make(map[string][]model.Transaction),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("decode state file %s: %w", path, err)
	}
	if state.Accounts == nil {
		state.Accounts = make(map[string]model.Account)
	}
	if state.Transactions == nil {
		state.Transactions = make(map[string][]model.Transaction)
	}
	for id, acct := range state.Accounts {
		if acct.Positions == nil {
			acct.Positions = make(map[string]model.Position)
			state.Accounts[id] = acct
		}
	}
	return state, nil
}

func (s *FileStore) Load(_ context.Context, userID string) (model.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.state.Accounts[userID]
	if !ok {
		return model.Account{}, false, nil
	}
	return acct.Clone(), true, nil
}

func (s *FileStore) Commit(_ context.Context, acct model.Account, tx model.Transaction) error {
	if err := checkCommit(acct, tx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := acct.Wallet.UserID
	prevAcct, hadAcct := s.state.Accounts[userID]
	prevTxs := s.state.Transactions[userID]

	s.state.Accounts[userID] = acct.Clone()
	s.state.Transactions[userID] = append(append([]model.Transaction(nil), prevTxs...), tx)

	if err := s.save(); err != nil {
		if hadAcct {
			s.state.Accounts[userID] = prevAcct
		} else {
			delete(s.state.Accounts, userID)
		}
		s.state.Transactions[userID] = prevTxs
		return err
	}
	return nil
}

func (s *FileStore) Transactions(_ context.Context, userID string) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Transaction(nil), s.state.Transactions[userID]...), nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
