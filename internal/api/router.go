package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/reinforcer/internal/workflow"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// search may be nil, in which case search and document listing answer 503.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *workflow.Service, search Searcher, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, search)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Post("/analyze", h.Analyze)

	// Staging workflow.
	r.Post("/staged", h.Submit)
	r.Get("/staged/{id}", h.Review)
	r.Put("/staged/{id}", h.Edit)
	r.Post("/staged/{id}/commit", h.Commit)
	r.Delete("/staged/{id}", h.Discard)

	// Committed knowledge base.
	r.Get("/entries", h.ListEntries)
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/*", h.GetDocument)
	r.Get("/search", h.Search)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
