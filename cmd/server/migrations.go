package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/users-api/internal/config"
	"github.com/phrazzld/users-api/internal/platform/postgres"
	"github.com/phrazzld/users-api/internal/platform/sqlite"
)

// runMigrationCommand executes a single migration command (up, down, status)
// against the configured database and returns once it completes. A
// correlation ID ties together every log line of the operation.
func runMigrationCommand(cfg *config.Config, command string) error {
	correlationID := uuid.New().String()
	migrationLogger := slog.Default().With(
		"correlation_id", correlationID,
		"component", "migrations",
		"command", command,
	)

	startTime := time.Now()
	migrationLogger.Info("Starting migration operation",
		"driver", cfg.Database.Driver)

	db, err := openMigrationDB(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			migrationLogger.Error("Error closing database connection", "error", closeErr)
		}
		migrationLogger.Info("Migration operation completed",
			"duration_ms", time.Since(startTime).Milliseconds())
	}()

	switch command {
	case "up":
		err = applyMigrations(cfg.Database.Driver, db)
	case "down":
		err = rollbackMigrations(cfg.Database.Driver, db)
	case "status":
		err = migrationStatus(cfg.Database.Driver, db)
	default:
		err = fmt.Errorf("unknown migration command: %q (expected up, down, or status)", command)
	}

	return err
}

// openMigrationDB opens a short-lived connection for a migration run. The
// pool is kept small; migrations run on a single connection anyway.
func openMigrationDB(cfg *config.Config) (*sql.DB, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := sql.Open("pgx", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}

		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return db, nil

	case config.DriverSQLite:
		return sqlite.Open(cfg.Database.URL)

	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}
}

// rollbackMigrations dispatches to the driver-specific rollback.
func rollbackMigrations(driver string, db *sql.DB) error {
	switch driver {
	case config.DriverPostgres:
		return postgres.RollbackMigrations(db)
	case config.DriverSQLite:
		return sqlite.RollbackMigrations(db)
	default:
		return fmt.Errorf("unsupported database driver: %q", driver)
	}
}

// migrationStatus dispatches to the driver-specific status report.
func migrationStatus(driver string, db *sql.DB) error {
	switch driver {
	case config.DriverPostgres:
		return postgres.MigrationStatus(db)
	case config.DriverSQLite:
		return sqlite.MigrationStatus(db)
	default:
		return fmt.Errorf("unsupported database driver: %q", driver)
	}
}
