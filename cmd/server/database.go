package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/phrazzld/users-api/internal/config"
	"github.com/phrazzld/users-api/internal/platform/postgres"
	"github.com/phrazzld/users-api/internal/platform/sqlite"
)

// setupAppDatabase establishes a connection to the configured database,
// configures connection pooling, and brings the schema up to date. Returns
// the database connection if successful, or an error if any step fails.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err = openPostgres(ctx, cfg.Database.URL)
	case config.DriverSQLite:
		db, err = sqlite.Open(cfg.Database.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Database connection established", "driver", cfg.Database.Driver)

	// Startup owns schema convergence: a fresh database gets the users table
	// created and seeded before the server accepts its first request.
	if err := applyMigrations(cfg.Database.Driver, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("failed to close database connection", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("Database schema is up to date")
	return db, nil
}

// openPostgres opens a pooled connection through the pgx stdlib driver and
// verifies it with a ping.
func openPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool with reasonable defaults
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// applyMigrations dispatches to the driver-specific migration set.
func applyMigrations(driver string, db *sql.DB) error {
	switch driver {
	case config.DriverPostgres:
		return postgres.ApplyMigrations(db)
	case config.DriverSQLite:
		return sqlite.ApplyMigrations(db)
	default:
		return fmt.Errorf("unsupported database driver: %q", driver)
	}
}
