package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListSessions returns every recorded login, newest first.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.sessions.ListSummaries(r.Context())
	if err != nil {
		s.logger.Error("list sessions failed", "error", err)
		writeInternalError(w, "failed to list sessions")
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// handleListUserSessions returns the logins of one account, newest first.
// Sessions outlive their account, so an unknown id yields an empty list.
func (s *Server) handleListUserSessions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sessions, err := s.sessions.ListByUser(r.Context(), id)
	if err != nil {
		s.logger.Error("list user sessions failed", "error", err, "user_id", id)
		writeInternalError(w, "failed to list sessions")
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}
