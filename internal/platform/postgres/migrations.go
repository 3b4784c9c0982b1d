package postgres

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ApplyMigrations brings the schema up to date, creating and seeding the
// users table on a fresh database. It is safe to call repeatedly; goose
// tracks applied versions in the schema_migrations table.
func ApplyMigrations(db *sql.DB) error {
	if err := configureGoose(); err != nil {
		return err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// RollbackMigrations walks every migration back down, dropping the users
// table along with its identity sequence.
func RollbackMigrations(db *sql.DB) error {
	if err := configureGoose(); err != nil {
		return err
	}
	if err := goose.Reset(db, "migrations"); err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

// MigrationStatus prints the applied/pending state of each migration.
func MigrationStatus(db *sql.DB) error {
	if err := configureGoose(); err != nil {
		return err
	}
	if err := goose.Status(db, "migrations"); err != nil {
		return fmt.Errorf("failed to report migration status: %w", err)
	}
	return nil
}

// configureGoose points goose at the embedded migration files. Goose keeps
// this state in package-level variables, so configure it before every run.
func configureGoose() error {
	goose.SetBaseFS(migrationsFS)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}
