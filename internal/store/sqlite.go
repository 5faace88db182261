package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"PortfolioSentinel/internal/model"
	"PortfolioSentinel/internal/sqlitedb"
)

// SQLiteStore persists accounts in SQLite. Each Commit runs in one SQL
// transaction covering the wallet row, the position rows and the ledger entry.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sqlitedb.Open(dbPath)
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite wallet store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS wallets (
			user_id            TEXT PRIMARY KEY,
			balance            REAL NOT NULL,
			total_trades       INTEGER NOT NULL,
			winning_trades     INTEGER NOT NULL,
			total_realized_pnl REAL NOT NULL,
			created_at         INTEGER NOT NULL,
			updated_at         INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS positions (
			user_id        TEXT NOT NULL,
			ticker         TEXT NOT NULL,
			side           TEXT NOT NULL,
			shares         REAL NOT NULL,
			avg_cost       REAL NOT NULL,
			opened_at      INTEGER NOT NULL,
			updated_at     INTEGER NOT NULL,
			PRIMARY KEY (user_id, ticker)
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			seq          INTEGER PRIMARY KEY AUTOINCREMENT,
			id           TEXT NOT NULL UNIQUE,
			user_id      TEXT NOT NULL,
			ticker       TEXT,
			type         TEXT NOT NULL,
			quantity     REAL,
			price        REAL,
			amount       REAL NOT NULL,
			fee          REAL,
			realized_pnl REAL,
			timestamp    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_user ON transactions(user_id, seq)`,
	}

	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, userID string) (model.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		w                model.Wallet
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT user_id, balance, total_trades, winning_trades,
		total_realized_pnl, created_at, updated_at FROM wallets WHERE user_id = ?`, userID).
		Scan(&w.UserID, &w.Balance, &w.TotalTrades, &w.WinningTrades, &w.TotalRealizedPnl, &created, &updated)
	if err == sql.ErrNoRows {
		return model.Account{}, false, nil
	}
	if err != nil {
		return model.Account{}, false, fmt.Errorf("load wallet: %w", err)
	}
	w.CreatedAt = fromUnixNano(created)
	w.UpdatedAt = fromUnixNano(updated)

	rows, err := s.db.QueryContext(ctx, `SELECT ticker, side, shares, avg_cost, opened_at, updated_at
		FROM positions WHERE user_id = ?`, userID)
	if err != nil {
		return model.Account{}, false, fmt.Errorf("load positions: %w", err)
	}
	defer rows.Close()

	acct := model.Account{Wallet: w, Positions: make(map[string]model.Position)}
	for rows.Next() {
		var (
			p           model.Position
			side        string
			opened, upd int64
		)
		if err := rows.Scan(&p.Ticker, &side, &p.Shares, &p.AvgCost, &opened, &upd); err != nil {
			return model.Account{}, false, fmt.Errorf("scan position: %w", err)
		}
		p.Side = model.Side(side)
		p.OpenedAt = fromUnixNano(opened)
		p.UpdatedAt = fromUnixNano(upd)
		acct.Positions[p.Ticker] = p
	}
	if err := rows.Err(); err != nil {
		return model.Account{}, false, fmt.Errorf("load positions: %w", err)
	}
	return acct, true, nil
}

func (s *SQLiteStore) Commit(ctx context.Context, acct model.Account, tx model.Transaction) error {
	if err := checkCommit(acct, tx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()

	w := acct.Wallet
	if _, err := sqlTx.ExecContext(ctx, `INSERT INTO wallets
		(user_id, balance, total_trades, winning_trades, total_realized_pnl, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(user_id) DO UPDATE SET
			balance = excluded.balance,
			total_trades = excluded.total_trades,
			winning_trades = excluded.winning_trades,
			total_realized_pnl = excluded.total_realized_pnl,
			updated_at = excluded.updated_at`,
		w.UserID, w.Balance, w.TotalTrades, w.WinningTrades, w.TotalRealizedPnl,
		w.CreatedAt.UnixNano(), w.UpdatedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("upsert wallet: %w", err)
	}

	if _, err := sqlTx.ExecContext(ctx, `DELETE FROM positions WHERE user_id = ?`, w.UserID); err != nil {
		return fmt.Errorf("clear positions: %w", err)
	}
	for _, p := range acct.Positions {
		if _, err := sqlTx.ExecContext(ctx, `INSERT INTO positions
			(user_id, ticker, side, shares, avg_cost, opened_at, updated_at)
			VALUES (?,?,?,?,?,?,?)`,
			w.UserID, p.Ticker, string(p.Side), p.Shares, p.AvgCost,
			p.OpenedAt.UnixNano(), p.UpdatedAt.UnixNano(),
		); err != nil {
			return fmt.Errorf("insert position %s: %w", p.Ticker, err)
		}
	}

	var realized sql.NullFloat64
	if tx.RealizedPnl != nil {
		realized = sql.NullFloat64{Float64: *tx.RealizedPnl, Valid: true}
	}
	if _, err := sqlTx.ExecContext(ctx, `INSERT INTO transactions
		(id, user_id, ticker, type, quantity, price, amount, fee, realized_pnl, timestamp)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		tx.ID, tx.UserID, tx.Ticker, string(tx.Type), tx.Quantity, tx.Price,
		tx.Amount, tx.Fee, realized, tx.Timestamp.UnixNano(),
	); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Transactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, ticker, type, quantity, price,
		amount, fee, realized_pnl, timestamp FROM transactions WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var (
			tx       model.Transaction
			ticker   sql.NullString
			typ      string
			realized sql.NullFloat64
			ts       int64
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &ticker, &typ, &tx.Quantity, &tx.Price,
			&tx.Amount, &tx.Fee, &realized, &ts); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Ticker = ticker.String
		tx.Type = model.TxType(typ)
		if realized.Valid {
			v := realized.Float64
			tx.RealizedPnl = &v
		}
		tx.Timestamp = fromUnixNano(ts)
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite wallet store")
	return s.db.Close()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
