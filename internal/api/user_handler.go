package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/users-api/internal/api/shared"
	"github.com/phrazzld/users-api/internal/domain"
	"github.com/phrazzld/users-api/internal/platform/logger"
	"github.com/phrazzld/users-api/internal/store"
)

// CreateUserRequest represents the request body for creating a new user
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=1"`
}

// UserResponse represents the response data for a user
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userStore store.UserStore
	logger    *slog.Logger
}

// NewUserHandler creates a new UserHandler.
// If logger is nil, a default logger will be used.
func NewUserHandler(userStore store.UserStore, logger *slog.Logger) *UserHandler {
	if userStore == nil {
		panic("userStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &UserHandler{
		userStore: userStore,
		logger:    logger.With(slog.String("component", "user_handler")),
	}
}

// ListUsers handles GET /api/users requests.
// An optional username query parameter narrows the result to users whose
// username matches it exactly, case-insensitively. An empty or absent
// parameter returns every user. A filter that matches nothing yields an
// empty payload array, not a 404.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	filter := r.URL.Query().Get("username")

	var (
		users []domain.User
		err   error
	)
	if filter != "" {
		log.Debug("listing users by username", slog.String("username", filter))
		users, err = h.userStore.ListByUsername(r.Context(), filter)
	} else {
		log.Debug("listing all users")
		users, err = h.userStore.List(r.Context())
	}

	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, usersToResponse(users))
}

// GetUser handles GET /api/users/{id} requests.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userStore.GetByID(r.Context(), id)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("user not found", slog.Int64("user_id", id))
			shared.RespondWithError(w, r, http.StatusNotFound,
				fmt.Sprintf("No user with id %d found", id))
			return
		}
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, userToResponse(user))
}

// CreateUser handles POST /api/users requests.
// The body must be a JSON object carrying a non-empty username string; the
// storage layer generates the id.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		// A wrong-typed username field gets the field-specific reason; any
		// other decode failure is reported as a malformed body.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "username" {
			shared.RespondWithError(w, r, http.StatusBadRequest,
				"Username must be a non-empty string")
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Username must be a non-empty string")
		return
	}

	user, err := h.userStore.Create(r.Context(), req.Username)
	if err != nil {
		// domain.ErrEmptyUsername maps to the same 400 reason the request
		// validation produces; anything else becomes a generic 500.
		respondWithMappedError(w, r, err)
		return
	}

	log.Info("user created",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))

	shared.RespondWithSuccess(w, r, http.StatusCreated, userToResponse(user))
}

// DeleteUser handles DELETE /api/users/{id} requests.
// The removed row is echoed back in the success payload.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userStore.DeleteByID(r.Context(), id)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("user not found for delete", slog.Int64("user_id", id))
			shared.RespondWithError(w, r, http.StatusNotFound,
				fmt.Sprintf("No user with id %d found", id))
			return
		}
		respondWithMappedError(w, r, err)
		return
	}

	log.Info("user deleted",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))

	shared.RespondWithSuccess(w, r, http.StatusOK, userToResponse(user))
}

// parseUserID extracts and parses the id path parameter. On failure it
// writes the 400 envelope itself and reports ok=false.
func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "User id must be an integer")
		return 0, false
	}
	return id, true
}

// userToResponse converts a domain.User to a UserResponse
func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
	}
}

// usersToResponse converts a slice of users to response DTOs.
// It always returns a non-nil slice so the payload encodes as a JSON array.
func usersToResponse(users []domain.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, userToResponse(&users[i]))
	}
	return responses
}
