// Package api implements the featlint REST API using chi.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/featlint/internal/engine"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// root is the project root scans are resolved against.
func NewRouter(eng *engine.Engine, root string, authEnabled bool, token string) chi.Router {
	h := NewHandler(eng, root)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/rules", h.ListRules)
	r.Post("/lint", h.Lint)

	return r
}
