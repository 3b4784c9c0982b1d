package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/users-api/internal/domain"
	"github.com/phrazzld/users-api/internal/platform/logger"
	"github.com/phrazzld/users-api/internal/store"
)

// SQLiteUserStore implements the store.UserStore interface
// using a SQLite database as the storage backend.
type SQLiteUserStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteUserStore creates a new SQLite implementation of the UserStore
// interface. It holds the full pool rather than a single connection because
// DeleteByID runs a read-then-delete transaction.
// If logger is nil, a default logger will be used.
func NewSQLiteUserStore(db *sql.DB, logger *slog.Logger) *SQLiteUserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure SQLiteUserStore implements store.UserStore interface
var _ store.UserStore = (*SQLiteUserStore)(nil)

// List implements store.UserStore.List
func (s *SQLiteUserStore) List(ctx context.Context) ([]domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("listing all users")

	query := `
		SELECT id, username
		FROM users
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query users", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	return scanUsers(rows, log)
}

// ListByUsername implements store.UserStore.ListByUsername
func (s *SQLiteUserStore) ListByUsername(ctx context.Context, username string) ([]domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("listing users by username", slog.String("username", username))

	query := `
		SELECT id, username
		FROM users
		WHERE LOWER(username) = LOWER(?)
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		log.Error("failed to query users by username",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	return scanUsers(rows, log)
}

// GetByID implements store.UserStore.GetByID
// Returns store.ErrUserNotFound if no row has the given id.
func (s *SQLiteUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving user by ID", slog.Int64("user_id", id))

	query := `
		SELECT id, username
		FROM users
		WHERE id = ?
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.Int64("user_id", id))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by ID",
			slog.String("error", err.Error()),
			slog.Int64("user_id", id))
		return nil, err
	}

	return &user, nil
}

// Create implements store.UserStore.Create
// SQLite reports the generated id through LastInsertId rather than a
// RETURNING clause.
func (s *SQLiteUserStore) Create(ctx context.Context, username string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateUsername(username); err != nil {
		log.Warn("username validation failed during create",
			slog.String("error", err.Error()))
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username) VALUES (?)`, username)
	if err != nil {
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		log.Error("failed to read generated user id",
			slog.String("error", err.Error()))
		return nil, err
	}

	user := &domain.User{ID: id, Username: username}

	log.Info("user created successfully",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))
	return user, nil
}

// DeleteByID implements store.UserStore.DeleteByID
// The row is read and removed inside one transaction so the returned user
// always matches what was deleted.
func (s *SQLiteUserStore) DeleteByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var user domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT id, username FROM users WHERE id = ?`, id).
			Scan(&user.ID, &user.Username)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrUserNotFound
			}
			return err
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return store.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("user not found for delete", slog.Int64("user_id", id))
			return nil, err
		}
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.Int64("user_id", id))
		return nil, err
	}

	log.Info("user deleted successfully",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))
	return &user, nil
}

// scanUsers drains rows into a slice, always returning a non-nil slice so
// list payloads encode as JSON arrays.
func scanUsers(rows *sql.Rows, log *slog.Logger) ([]domain.User, error) {
	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			log.Error("failed to scan user row", slog.String("error", err.Error()))
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if users == nil {
		users = []domain.User{}
	}

	return users, nil
}
