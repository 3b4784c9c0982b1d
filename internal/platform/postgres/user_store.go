package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/users-api/internal/domain"
	"github.com/phrazzld/users-api/internal/platform/logger"
	"github.com/phrazzld/users-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// List implements store.UserStore.List
// It retrieves every user ordered by ascending id.
func (s *PostgresUserStore) List(ctx context.Context) ([]domain.User, error) {
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
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	return scanUsers(rows, log)
}

// ListByUsername implements store.UserStore.ListByUsername
// It retrieves the users whose username matches the given value exactly but
// case-insensitively, ordered by ascending id. A miss yields an empty slice.
func (s *PostgresUserStore) ListByUsername(ctx context.Context, username string) ([]domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("listing users by username", slog.String("username", username))

	query := `
		SELECT id, username
		FROM users
		WHERE LOWER(username) = LOWER($1)
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		log.Error("failed to query users by username",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, MapError(err)
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
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving user by ID", slog.Int64("user_id", id))

	query := `
		SELECT id, username
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Username)
	if err != nil {
		mapped := MapError(err)
		if store.IsNotFoundError(mapped) {
			log.Debug("user not found", slog.Int64("user_id", id))
			return nil, mapped
		}
		log.Error("failed to get user by ID",
			slog.String("error", err.Error()),
			slog.Int64("user_id", id))
		return nil, mapped
	}

	return &user, nil
}

// Create implements store.UserStore.Create
// It inserts a row with the given username; the id column is generated by
// the database and is never supplied by callers.
func (s *PostgresUserStore) Create(ctx context.Context, username string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateUsername(username); err != nil {
		log.Warn("username validation failed during create",
			slog.String("error", err.Error()))
		return nil, err
	}

	query := `
		INSERT INTO users (username)
		VALUES ($1)
		RETURNING id, username
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username)
	if err != nil {
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, MapError(err)
	}

	log.Info("user created successfully",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))
	return &user, nil
}

// DeleteByID implements store.UserStore.DeleteByID
// It removes the row with the given id and returns it.
// Returns store.ErrUserNotFound if no row has that id.
func (s *PostgresUserStore) DeleteByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM users
		WHERE id = $1
		RETURNING id, username
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Username)
	if err != nil {
		mapped := MapError(err)
		if store.IsNotFoundError(mapped) {
			log.Debug("user not found for delete", slog.Int64("user_id", id))
			return nil, mapped
		}
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.Int64("user_id", id))
		return nil, mapped
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
