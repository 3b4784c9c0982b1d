package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/users-api/internal/domain"
	"github.com/phrazzld/users-api/internal/platform/postgres"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// IsIntegrationTestEnvironment returns true if any of the database URL
// environment variables are set, indicating that integration tests can run.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// ShouldSkipDatabaseTest returns true if no database URL is configured.
// Tests use it for a consistent skip condition.
func ShouldSkipDatabaseTest() bool {
	return !IsIntegrationTestEnvironment()
}

// GetTestDatabaseURL returns the database URL for tests.
// It checks DATABASE_URL, USERS_TEST_DB_URL, and USERS_DATABASE_URL in that
// order, returning the first non-empty value.
func GetTestDatabaseURL() string {
	for _, name := range []string{"DATABASE_URL", "USERS_TEST_DB_URL", "USERS_DATABASE_URL"} {
		if url := os.Getenv(name); url != "" {
			return url
		}
	}
	return ""
}

// SeedUsers lists the rows the seed migration inserts, in id order.
// Tests assert against these instead of repeating the literals.
func SeedUsers() []domain.User {
	return []domain.User{
		{ID: 1, Username: "James"},
		{ID: 2, Username: "Mary"},
		{ID: 3, Username: "Robert"},
		{ID: 4, Username: "Patricia"},
		{ID: 5, Username: "Lauren"},
	}
}

// GetTestDBWithT returns a database connection for testing.
// It skips the test if no database URL is configured and registers cleanup
// that closes the connection when the test finishes.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("DATABASE_URL, USERS_TEST_DB_URL and USERS_DATABASE_URL not set - skipping integration test")
	}

	db, err := openPool(dbURL)
	require.NoError(t, err, "Failed to open database connection")

	t.Cleanup(func() {
		CleanupDB(t, db)
	})

	return db
}

// GetTestDB returns a database connection for testing without requiring a
// testing.T. Returns an error if no database URL is configured.
func GetTestDB() (*sql.DB, error) {
	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL, USERS_TEST_DB_URL and USERS_DATABASE_URL not set")
	}

	return openPool(dbURL)
}

// openPool opens a pgx-backed pool with the standard test pool settings and
// verifies the connection before handing it out.
func openPool(dbURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("database ping failed: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

// CleanupDB properly closes a database connection, logging any errors.
func CleanupDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}

	if err := db.Close(); err != nil {
		t.Logf("Warning: failed to close database connection: %v", err)
	}
}

// SetupTestDatabaseSchema runs the embedded migrations so the users table
// exists and carries its seed rows.
func SetupTestDatabaseSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	goose.SetLogger(&testGooseLogger{t: t})
	require.NoError(t, postgres.ApplyMigrations(db), "Failed to run migrations")
}

// ResetUsersTable restores the pristine seed state by walking the
// migrations down and up again: drop, recreate, reseed. Id generation
// restarts alongside the table, so a fresh run always begins at id 1.
func ResetUsersTable(t *testing.T, db *sql.DB) {
	t.Helper()

	goose.SetLogger(&testGooseLogger{t: t})
	require.NoError(t, postgres.RollbackMigrations(db), "Failed to roll back migrations")
	require.NoError(t, postgres.ApplyMigrations(db), "Failed to apply migrations")
}

// DropUsersTable removes the users table entirely.
func DropUsersTable(t *testing.T, db *sql.DB) {
	t.Helper()

	goose.SetLogger(&testGooseLogger{t: t})
	require.NoError(t, postgres.RollbackMigrations(db), "Failed to roll back migrations")
}

// WithTx executes a test function within a transaction, automatically
// rolling back after the test completes. This ensures test isolation and
// prevents side effects between tests sharing one database.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "Failed to begin transaction")

	// Ensure rollback happens after test completes or fails
	defer func() {
		err := tx.Rollback()
		// sql.ErrTxDone is expected if tx is already committed or rolled back
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// OpenSchemaScopedDB opens a pool whose search_path points at a schema
// created only for this test, and registers cleanup that drops the schema
// again. Tests that must commit use this instead of WithTx so their writes
// stay invisible to every other test.
func OpenSchemaScopedDB(t *testing.T) *sql.DB {
	t.Helper()

	baseURL := GetTestDatabaseURL()
	if baseURL == "" {
		t.Skip("DATABASE_URL, USERS_TEST_DB_URL and USERS_DATABASE_URL not set - skipping integration test")
	}

	schema := "test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	admin := GetTestDBWithT(t)
	_, err := admin.Exec(fmt.Sprintf("CREATE SCHEMA %q", schema))
	require.NoError(t, err, "Failed to create test schema")
	t.Cleanup(func() {
		if _, err := admin.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %q CASCADE", schema)); err != nil {
			t.Logf("Warning: failed to drop test schema %s: %v", schema, err)
		}
	})

	scopedURL := baseURL
	if strings.Contains(scopedURL, "?") {
		scopedURL += "&search_path=" + schema
	} else {
		scopedURL += "?search_path=" + schema
	}

	db, err := openPool(scopedURL)
	require.NoError(t, err, "Failed to open schema-scoped connection")
	t.Cleanup(func() {
		CleanupDB(t, db)
	})

	return db
}

// testGooseLogger routes goose output through the test log.
type testGooseLogger struct {
	t *testing.T
}

// Printf implements the required logging method for goose's SetLogger
func (l *testGooseLogger) Printf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.t.Log("Goose: " + strings.TrimSpace(msg))
}

// Fatalf implements the required logging method for goose's SetLogger
func (l *testGooseLogger) Fatalf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.t.Fatal("Goose fatal error: " + strings.TrimSpace(msg))
}
