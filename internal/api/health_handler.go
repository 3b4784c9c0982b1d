package api

import (
	"fmt"
	"net/http"

	"github.com/phrazzld/users-api/internal/api/shared"
)

// HealthCheck handles GET /api/health requests. It reports liveness only;
// it does not touch the database.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithSuccess(w, r, http.StatusOK, "API is running correctly")
}

// NotFound is the catch-all responder for requests that match no route.
// It is registered as both the router's NotFound and MethodNotAllowed
// handler so every unmatched request gets the same 404 envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusNotFound,
		fmt.Sprintf("No resource found at %s, please re-check the path and try again.", r.URL.Path))
}
