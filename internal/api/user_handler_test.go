package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/users-api/internal/domain"
	"github.com/phrazzld/users-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockUserStore is a mock implementation of store.UserStore for testing
type MockUserStore struct {
	ListFn           func(ctx context.Context) ([]domain.User, error)
	ListByUsernameFn func(ctx context.Context, username string) ([]domain.User, error)
	GetByIDFn        func(ctx context.Context, id int64) (*domain.User, error)
	CreateFn         func(ctx context.Context, username string) (*domain.User, error)
	DeleteByIDFn     func(ctx context.Context, id int64) (*domain.User, error)
}

// List implements store.UserStore
func (m *MockUserStore) List(ctx context.Context) ([]domain.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

// ListByUsername implements store.UserStore
func (m *MockUserStore) ListByUsername(ctx context.Context, username string) ([]domain.User, error) {
	if m.ListByUsernameFn != nil {
		return m.ListByUsernameFn(ctx, username)
	}
	return nil, nil
}

// GetByID implements store.UserStore
func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

// Create implements store.UserStore
func (m *MockUserStore) Create(ctx context.Context, username string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, username)
	}
	return nil, nil
}

// DeleteByID implements store.UserStore
func (m *MockUserStore) DeleteByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.DeleteByIDFn != nil {
		return m.DeleteByIDFn(ctx, id)
	}
	return nil, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// decodeEnvelope parses a response body into the generic envelope shape.
func decodeEnvelope(t *testing.T, body *bytes.Buffer) map[string]interface{} {
	t.Helper()

	var envelope map[string]interface{}
	err := json.Unmarshal(body.Bytes(), &envelope)
	require.NoError(t, err, "response body should be valid JSON")
	return envelope
}

// TestUserHandler_ListUsers tests the ListUsers handler functionality.
func TestUserHandler_ListUsers(t *testing.T) {
	seeded := []domain.User{
		{ID: 1, Username: "James"},
		{ID: 2, Username: "Mary"},
		{ID: 3, Username: "Robert"},
	}

	tests := []struct {
		name            string
		target          string
		setupMock       func(ms *MockUserStore)
		expectedStatus  int
		expectedErrMsg  string
		expectedPayload []interface{}
	}{
		{
			name:   "list_all_users",
			target: "/api/users",
			setupMock: func(ms *MockUserStore) {
				ms.ListFn = func(ctx context.Context) ([]domain.User, error) {
					return seeded, nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedPayload: []interface{}{
				map[string]interface{}{"id": float64(1), "username": "James"},
				map[string]interface{}{"id": float64(2), "username": "Mary"},
				map[string]interface{}{"id": float64(3), "username": "Robert"},
			},
		},
		{
			name:   "filter_by_username",
			target: "/api/users?username=mary",
			setupMock: func(ms *MockUserStore) {
				ms.ListByUsernameFn = func(ctx context.Context, username string) ([]domain.User, error) {
					assert.Equal(t, "mary", username)
					return []domain.User{{ID: 2, Username: "Mary"}}, nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedPayload: []interface{}{
				map[string]interface{}{"id": float64(2), "username": "Mary"},
			},
		},
		{
			name:   "filter_matches_nothing",
			target: "/api/users?username=nobody",
			setupMock: func(ms *MockUserStore) {
				ms.ListByUsernameFn = func(ctx context.Context, username string) ([]domain.User, error) {
					return []domain.User{}, nil
				}
			},
			expectedStatus:  http.StatusOK,
			expectedPayload: []interface{}{},
		},
		{
			name:   "empty_filter_lists_all",
			target: "/api/users?username=",
			setupMock: func(ms *MockUserStore) {
				ms.ListFn = func(ctx context.Context) ([]domain.User, error) {
					return seeded, nil
				}
				ms.ListByUsernameFn = func(ctx context.Context, username string) ([]domain.User, error) {
					t.Error("ListByUsername should not be called for an empty filter")
					return nil, nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedPayload: []interface{}{
				map[string]interface{}{"id": float64(1), "username": "James"},
				map[string]interface{}{"id": float64(2), "username": "Mary"},
				map[string]interface{}{"id": float64(3), "username": "Robert"},
			},
		},
		{
			name:   "empty_table_yields_empty_array",
			target: "/api/users",
			setupMock: func(ms *MockUserStore) {
				ms.ListFn = func(ctx context.Context) ([]domain.User, error) {
					return []domain.User{}, nil
				}
			},
			expectedStatus:  http.StatusOK,
			expectedPayload: []interface{}{},
		},
		{
			name:   "store_error",
			target: "/api/users",
			setupMock: func(ms *MockUserStore) {
				ms.ListFn = func(ctx context.Context) ([]domain.User, error) {
					return nil, errors.New("connection reset by peer")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedErrMsg: "Something went wrong, please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := &MockUserStore{}
			tt.setupMock(mockStore)

			handler := NewUserHandler(mockStore, newTestLogger())

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()

			handler.ListUsers(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			envelope := decodeEnvelope(t, w.Body)

			if tt.expectedErrMsg != "" {
				assert.Equal(t, false, envelope["success"])
				assert.Equal(t, tt.expectedErrMsg, envelope["reason"])
				return
			}

			assert.Equal(t, true, envelope["success"])
			assert.Equal(t, tt.expectedPayload, envelope["payload"])
		})
	}
}

// TestUserHandler_GetUser tests the GetUser handler functionality.
func TestUserHandler_GetUser(t *testing.T) {
	tests := []struct {
		name            string
		idParam         string
		setupMock       func(ms *MockUserStore)
		expectedStatus  int
		expectedErrMsg  string
		expectedPayload map[string]interface{}
	}{
		{
			name:    "existing_user",
			idParam: "3",
			setupMock: func(ms *MockUserStore) {
				ms.GetByIDFn = func(ctx context.Context, id int64) (*domain.User, error) {
					assert.Equal(t, int64(3), id)
					return &domain.User{ID: 3, Username: "Robert"}, nil
				}
			},
			expectedStatus:  http.StatusOK,
			expectedPayload: map[string]interface{}{"id": float64(3), "username": "Robert"},
		},
		{
			name:    "unknown_user",
			idParam: "42",
			setupMock: func(ms *MockUserStore) {
				ms.GetByIDFn = func(ctx context.Context, id int64) (*domain.User, error) {
					return nil, store.ErrUserNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
			expectedErrMsg: "No user with id 42 found",
		},
		{
			name:    "non_integer_id",
			idParam: "abc",
			setupMock: func(ms *MockUserStore) {
				ms.GetByIDFn = func(ctx context.Context, id int64) (*domain.User, error) {
					t.Error("GetByID should not be called for a non-integer id")
					return nil, nil
				}
			},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "User id must be an integer",
		},
		{
			name:    "store_error",
			idParam: "3",
			setupMock: func(ms *MockUserStore) {
				ms.GetByIDFn = func(ctx context.Context, id int64) (*domain.User, error) {
					return nil, errors.New("connection reset by peer")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedErrMsg: "Something went wrong, please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := &MockUserStore{}
			tt.setupMock(mockStore)

			handler := NewUserHandler(mockStore, newTestLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/users/"+tt.idParam, nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.idParam)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.GetUser(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			envelope := decodeEnvelope(t, w.Body)

			if tt.expectedErrMsg != "" {
				assert.Equal(t, false, envelope["success"])
				assert.Equal(t, tt.expectedErrMsg, envelope["reason"])
				return
			}

			assert.Equal(t, true, envelope["success"])
			assert.Equal(t, tt.expectedPayload, envelope["payload"])
		})
	}
}

// TestUserHandler_CreateUser tests the CreateUser handler functionality.
func TestUserHandler_CreateUser(t *testing.T) {
	tests := []struct {
		name            string
		requestBody     interface{}
		setupMock       func(ms *MockUserStore)
		expectedStatus  int
		expectedErrMsg  string
		expectedPayload map[string]interface{}
	}{
		{
			name:        "valid_username",
			requestBody: CreateUserRequest{Username: "Trinity"},
			setupMock: func(ms *MockUserStore) {
				ms.CreateFn = func(ctx context.Context, username string) (*domain.User, error) {
					assert.Equal(t, "Trinity", username)
					return &domain.User{ID: 6, Username: username}, nil
				}
			},
			expectedStatus:  http.StatusCreated,
			expectedPayload: map[string]interface{}{"id": float64(6), "username": "Trinity"},
		},
		{
			name:        "malformed_json",
			requestBody: `{"username": "Trinity`,
			setupMock: func(ms *MockUserStore) {
				ms.CreateFn = func(ctx context.Context, username string) (*domain.User, error) {
					t.Error("Create should not be called for a malformed body")
					return nil, nil
				}
			},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Invalid request body",
		},
		{
			name:        "missing_username",
			requestBody: `{}`,
			setupMock: func(ms *MockUserStore) {
				ms.CreateFn = func(ctx context.Context, username string) (*domain.User, error) {
					t.Error("Create should not be called for a missing username")
					return nil, nil
				}
			},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Username must be a non-empty string",
		},
		{
			name:        "empty_username",
			requestBody: CreateUserRequest{Username: ""},
			setupMock: func(ms *MockUserStore) {
				ms.CreateFn = func(ctx context.Context, username string) (*domain.User, error) {
					t.Error("Create should not be called for an empty username")
					return nil, nil
				}
			},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Username must be a non-empty string",
		},
		{
			name:        "non_string_username",
			requestBody: `{"username": 123}`,
			setupMock: func(ms *MockUserStore) {
				ms.CreateFn = func(ctx context.Context, username string) (*domain.User, error) {
					t.Error("Create should not be called for a non-string username")
					return nil, nil
				}
			},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Username must be a non-empty string",
		},
		{
			name:        "store_rejects_empty_username",
			requestBody: CreateUserRequest{Username: "   "},
			setupMock: func(ms *MockUserStore) {
				ms.CreateFn = func(ctx context.Context, username string) (*domain.User, error) {
					return nil, domain.ErrEmptyUsername
				}
			},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Username must be a non-empty string",
		},
		{
			name:        "store_error",
			requestBody: CreateUserRequest{Username: "Trinity"},
			setupMock: func(ms *MockUserStore) {
				ms.CreateFn = func(ctx context.Context, username string) (*domain.User, error) {
					return nil, errors.New("connection reset by peer")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedErrMsg: "Something went wrong, please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := &MockUserStore{}
			tt.setupMock(mockStore)

			handler := NewUserHandler(mockStore, newTestLogger())

			var reqBody []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				// Raw JSON strings cover the malformed and wrong-type cases
				reqBody = []byte(str)
			} else {
				reqBody, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()

			handler.CreateUser(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			envelope := decodeEnvelope(t, w.Body)

			if tt.expectedErrMsg != "" {
				assert.Equal(t, false, envelope["success"])
				assert.Equal(t, tt.expectedErrMsg, envelope["reason"])
				return
			}

			assert.Equal(t, true, envelope["success"])
			assert.Equal(t, tt.expectedPayload, envelope["payload"])
		})
	}
}

// TestUserHandler_DeleteUser tests the DeleteUser handler functionality.
func TestUserHandler_DeleteUser(t *testing.T) {
	tests := []struct {
		name            string
		idParam         string
		setupMock       func(ms *MockUserStore)
		expectedStatus  int
		expectedErrMsg  string
		expectedPayload map[string]interface{}
	}{
		{
			name:    "existing_user",
			idParam: "2",
			setupMock: func(ms *MockUserStore) {
				ms.DeleteByIDFn = func(ctx context.Context, id int64) (*domain.User, error) {
					assert.Equal(t, int64(2), id)
					return &domain.User{ID: 2, Username: "Mary"}, nil
				}
			},
			expectedStatus:  http.StatusOK,
			expectedPayload: map[string]interface{}{"id": float64(2), "username": "Mary"},
		},
		{
			name:    "unknown_user",
			idParam: "42",
			setupMock: func(ms *MockUserStore) {
				ms.DeleteByIDFn = func(ctx context.Context, id int64) (*domain.User, error) {
					return nil, store.ErrUserNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
			expectedErrMsg: "No user with id 42 found",
		},
		{
			name:    "non_integer_id",
			idParam: "2.5",
			setupMock: func(ms *MockUserStore) {
				ms.DeleteByIDFn = func(ctx context.Context, id int64) (*domain.User, error) {
					t.Error("DeleteByID should not be called for a non-integer id")
					return nil, nil
				}
			},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "User id must be an integer",
		},
		{
			name:    "store_error",
			idParam: "2",
			setupMock: func(ms *MockUserStore) {
				ms.DeleteByIDFn = func(ctx context.Context, id int64) (*domain.User, error) {
					return nil, errors.New("connection reset by peer")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedErrMsg: "Something went wrong, please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := &MockUserStore{}
			tt.setupMock(mockStore)

			handler := NewUserHandler(mockStore, newTestLogger())

			req := httptest.NewRequest(http.MethodDelete, "/api/users/"+tt.idParam, nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.idParam)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.DeleteUser(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			envelope := decodeEnvelope(t, w.Body)

			if tt.expectedErrMsg != "" {
				assert.Equal(t, false, envelope["success"])
				assert.Equal(t, tt.expectedErrMsg, envelope["reason"])
				return
			}

			assert.Equal(t, true, envelope["success"])
			assert.Equal(t, tt.expectedPayload, envelope["payload"])
		})
	}
}

// TestNewUserHandler_NilStore verifies the constructor rejects a nil store.
func TestNewUserHandler_NilStore(t *testing.T) {
	assert.Panics(t, func() {
		NewUserHandler(nil, newTestLogger())
	})
}

// TestUserHandler_HelperFunctions tests the DTO conversion helpers.
func TestUserHandler_HelperFunctions(t *testing.T) {
	t.Run("userToResponse", func(t *testing.T) {
		user := &domain.User{ID: 7, Username: "Morpheus"}

		resp := userToResponse(user)

		assert.Equal(t, int64(7), resp.ID)
		assert.Equal(t, "Morpheus", resp.Username)
	})

	t.Run("usersToResponse_preserves_order", func(t *testing.T) {
		users := []domain.User{
			{ID: 1, Username: "James"},
			{ID: 2, Username: "Mary"},
		}

		resps := usersToResponse(users)

		require.Len(t, resps, 2)
		assert.Equal(t, UserResponse{ID: 1, Username: "James"}, resps[0])
		assert.Equal(t, UserResponse{ID: 2, Username: "Mary"}, resps[1])
	})

	t.Run("usersToResponse_nil_input", func(t *testing.T) {
		resps := usersToResponse(nil)

		require.NotNil(t, resps, "a nil slice must still encode as a JSON array")
		assert.Len(t, resps, 0)
	})
}
