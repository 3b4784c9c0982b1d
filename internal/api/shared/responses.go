package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/users-api/internal/redact"
)

// SuccessResponse is the envelope for every successful API response.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Payload interface{} `json:"payload"`
}

// ErrorResponse is the envelope for every failed API response. Reason is a
// human-readable message; internal error details never appear here.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason"`
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithSuccess writes a success envelope with the given status code
// and payload.
func RespondWithSuccess(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	RespondWithJSON(w, r, status, SuccessResponse{
		Success: true,
		Payload: payload,
	})
}

// RespondWithError writes an error envelope with the given status code and reason.
// The trace ID from the request context is attached to the log line so the
// response can be correlated with server-side details.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, reason string) {
	traceID := GetTraceID(r.Context())

	slog.Debug("sending error response",
		"status_code", status,
		"reason", reason,
		"trace_id", traceID,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, ErrorResponse{
		Success: false,
		Reason:  reason,
	})
}

// RespondWithErrorAndLog writes an error envelope and also logs the detailed
// error. Use it when the underlying error must be recorded but only a
// sanitized reason may reach the client. Server errors (5xx) are logged at
// ERROR level; everything else at DEBUG.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	reason string,
	err error,
) {
	traceID := GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("reason", reason),
	}

	// The raw error goes to the logs only, and only after redaction.
	if err != nil {
		logAttrs = append(logAttrs, slog.String("error", redact.Error(err)))
		logAttrs = append(logAttrs, slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	}

	slog.LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, ErrorResponse{
		Success: false,
		Reason:  reason,
	})
}
