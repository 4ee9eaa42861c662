package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// WS ticket requires authentication - user must be logged in to request a ticket
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// System status
			r.Get("/system/status", s.handleSystemStatus)

			// Scene endpoints
			r.Route("/scenes", func(r chi.Router) {
				r.Get("/", s.handleListScenes)
				r.Post("/load", s.handleLoadScenes)
				r.Post("/unload", s.handleUnloadScenes)
				r.Post("/unload-all-except", s.handleUnloadAllExcept)
				r.Get("/active", s.handleGetActiveScene)
				r.Put("/active", s.handleSetActiveScene)
			})

			// Batch endpoints
			r.Route("/batches", func(r chi.Router) {
				r.Get("/", s.handleListBatches)
				r.Post("/", s.handleCreateBatch)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetBatch)
					r.Patch("/", s.handleUpdateBatch)
					r.Delete("/", s.handleDeleteBatch)
					r.Post("/run", s.handleRunBatch)
				})
			})

			// WebSocket (auth via ticket, validated in handler)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
