package domain

// User represents a single row of the users table. The id is generated by
// the storage layer on insert and is immutable afterwards; the API layer
// never assigns ids.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Validate checks that a stored user row is well formed.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID <= 0 {
		return ErrInvalidUserID
	}
	if u.Username == "" {
		return ErrEmptyUsername
	}
	return nil
}

// ValidateUsername checks a username ahead of insertion, before the storage
// layer has generated an id for the row.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	return nil
}
