package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/users-api/internal/api/shared"
	"github.com/phrazzld/users-api/internal/domain"
	"github.com/phrazzld/users-api/internal/store"
)

// InternalErrorReason is the only message clients ever see for faults that
// are not their doing (database unreachable, failed query, encoding bugs).
const InternalErrorReason = "Something went wrong, please try again later."

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrEmptyUsername),
		errors.Is(err, domain.ErrInvalidUserID):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly reason for the
// given error. Handlers that know more context (such as the requested id)
// format their own reason instead.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return InternalErrorReason
	}

	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, domain.ErrEmptyUsername):
		return "Username must be a non-empty string"

	case errors.Is(err, domain.ErrInvalidUserID):
		return "User id must be an integer"

	default:
		return InternalErrorReason
	}
}

// respondWithMappedError is the fallback responder for store errors a
// handler has no specific treatment for. The error is logged in full while
// the client receives only the mapped status and sanitized reason.
func respondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
