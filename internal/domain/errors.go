package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrInvalidUserID is returned when a user id is zero or negative.
	ErrInvalidUserID = errors.New("user id must be a positive integer")

	// ErrEmptyUsername is returned when a username is empty.
	ErrEmptyUsername = errors.New("username cannot be empty")
)
