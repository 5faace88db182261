package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"PortfolioSentinel/internal/model"
	"PortfolioSentinel/internal/sqlitedb"
)

// SQLiteRecorder persists signal history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sqlitedb.Open(dbPath)
	if err != nil {
		return nil, err
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_history (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			ticker       TEXT NOT NULL,
			signal       TEXT NOT NULL,
			confidence   REAL,
			reason       TEXT,
			frequency    TEXT,
			valid_count  INTEGER,
			error_count  INTEGER,
			indicators   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_ticker_ts ON signal_history(ticker, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// indicatorRow is the JSON shape stored per indicator result.
type indicatorRow struct {
	Type     model.IndicatorType  `json:"type"`
	Value    model.IndicatorValue `json:"value,omitempty"`
	Signal   model.Action         `json:"signal"`
	Strength float64              `json:"strength"`
	Error    string               `json:"error,omitempty"`
}

func (r *SQLiteRecorder) RecordSignal(sig model.Signal, freq model.Frequency) error {
	rows := make([]indicatorRow, 0, len(sig.IndicatorResults))
	var valid, failed int
	for _, res := range sig.IndicatorResults {
		row := indicatorRow{Type: res.Type, Value: res.Value, Signal: res.Signal, Strength: res.Strength}
		if res.Err != nil {
			row.Error = res.Err.Error()
			failed++
		} else {
			valid++
		}
		rows = append(rows, row)
	}
	indicators, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode indicators: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO signal_history
		(timestamp, ticker, signal, confidence, reason, frequency, valid_count, error_count, indicators)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		sig.Timestamp.Unix(), sig.Ticker, string(sig.Signal), sig.Confidence, sig.Reason,
		string(freq), valid, failed, string(indicators),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
