package store

import (
	"context"

	"github.com/phrazzld/users-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// List retrieves every user ordered by ascending id.
	// Returns an empty slice when the table is empty.
	List(ctx context.Context) ([]domain.User, error)

	// ListByUsername retrieves the users whose username matches the given
	// value exactly but case-insensitively, ordered by ascending id.
	// Returns an empty slice when nothing matches; a miss is not an error.
	ListByUsername(ctx context.Context, username string) ([]domain.User, error)

	// GetByID retrieves a user by their unique id.
	// Returns ErrUserNotFound if no row has that id.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// Create inserts a row with the given username and a storage-generated
	// id, and returns the created row. Ids are never reused within a table
	// lifetime. Returns domain validation errors for an empty username.
	Create(ctx context.Context, username string) (*domain.User, error)

	// DeleteByID removes the row with the given id and returns it.
	// Returns ErrUserNotFound if no row has that id.
	DeleteByID(ctx context.Context, id int64) (*domain.User, error)
}
