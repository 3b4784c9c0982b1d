package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/users-api/internal/api"
	apiMiddleware "github.com/phrazzld/users-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's stores
	userHandler := api.NewUserHandler(app.userStore, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", api.HealthCheck)

		r.Get("/users", userHandler.ListUsers)
		r.Post("/users", userHandler.CreateUser)
		r.Get("/users/{id}", userHandler.GetUser)
		r.Delete("/users/{id}", userHandler.DeleteUser)
	})

	// Anything that matches no route, or matches a route with the wrong
	// method, gets the same 404 envelope.
	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.NotFound)

	return r
}
