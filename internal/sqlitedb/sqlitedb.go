// Package sqlitedb opens SQLite databases shared by the wallet store and the
// signal recorder.
package sqlitedb

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// BusyTimeoutMillis is how long a connection waits on a locked database
// before reporting SQLITE_BUSY.
const BusyTimeoutMillis = 5000

// DSN builds the connection string for path. Every connection runs in WAL
// mode with a busy timeout, and write transactions take the write lock at
// BEGIN so that concurrent writers queue instead of failing.
func DSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", BusyTimeoutMillis))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_txlock", "immediate")
	return path + "?" + q.Encode()
}

// Open opens path and checks that the database is reachable.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return db, nil
}
