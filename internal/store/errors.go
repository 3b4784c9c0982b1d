package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. It is a normal negative result, not an infrastructure fault.
	ErrNotFound = errors.New("entity not found")

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// Infrastructure faults (connection loss, query failures) never satisfy it.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
