package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/users-api/internal/store"
)

// PostgreSQL error codes
const (
	// undefinedTableCode is the PostgreSQL error code for a query against a
	// table that does not exist.
	undefinedTableCode = "42P01"
)

// MapError maps a database error to an appropriate store error.
// Every query in this package routes its errors through here so callers see
// consistent sentinel errors regardless of which operation failed.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrUserNotFound
	}

	// A missing users table means the schema has not been migrated; name the
	// remedy instead of echoing the raw driver error.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode {
		return fmt.Errorf("users table does not exist, run migrations first: %w", err)
	}

	// Return the original error for errors that don't have specific mappings
	return err
}

// IsUndefinedTable checks if the given error came from querying a table that
// does not exist.
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode
}
