package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// Open opens (or creates) a SQLite database for the given DSN and verifies
// the connection. Pass ":memory:" for an in-process throwaway database.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = "users.db"
	}

	db, err := sql.Open("sqlite3", withConnParams(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Each pooled connection to ":memory:" opens a distinct database, so the
	// pool must be pinned to one connection for state to be shared.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return db, nil
}

// withConnParams appends the busy timeout and foreign key pragmas to the
// DSN. Pragmas travel in the DSN so they hold on every pooled connection,
// not just the one that executed them. Callers that set their own
// parameters are left alone.
func withConnParams(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?_busy_timeout=5000&_foreign_keys=on"
}
