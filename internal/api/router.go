package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gatehouse-core/internal/auth"
)

// healthCheckTimeout bounds the database ping made by /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Get("/health", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Use(s.requireRole(auth.RoleAdmin))

			r.Get("/users/all", s.handleListUsers)
			r.Delete("/users/{id}", s.handleDeleteUser)
			r.Put("/users/{id}/role", s.handleUpdateRole)
			r.Get("/users/{id}/sessions", s.handleListUserSessions)
			r.Get("/sessions", s.handleListSessions)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(s.requireRole(auth.RoleAdmin))

		r.Get("/sessions", s.handleListSessions)
		r.Get("/audit", s.handleListAuditLogs)
		r.Get("/metrics", s.handleMetrics)
	})

	return r
}

// handleHealth reports the server and database status. A failed database
// ping returns 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Error("health check database ping failed", "error", err)
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
	})
}
