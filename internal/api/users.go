package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gatehouse-core/internal/audit"
	"github.com/nerrad567/gatehouse-core/internal/auth"
)

type updateRoleRequest struct {
	Role string `json:"role"`
}

// handleListUsers returns every account as a profile array.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.store.ListAll(r.Context())
	if err != nil {
		s.logger.Error("list users failed", "error", err)
		writeInternalError(w, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, profiles)
}

// handleDeleteUser removes an account. Sessions of the account are kept.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, _ := claimsFromContext(r.Context())

	user, err := s.store.Get(r.Context(), id)
	if err == nil {
		err = s.store.Delete(r.Context(), id)
	}
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("delete user failed", "error", err, "user_id", id)
		writeInternalError(w, "failed to delete user")
		return
	}

	s.logger.Info("user deleted", "user_id", id, "deleted_by", claims.UserID)
	s.recordEvent(accountEvent{
		action:   audit.ActionDelete,
		userID:   id,
		username: user.Username,
		role:     user.Role,
		actorID:  claims.UserID,
		success:  true,
		details:  map[string]any{"username": user.Username},
	})

	writeMessage(w, http.StatusOK, "user deleted", nil)
}

// handleUpdateRole changes an account's role. Tokens already issued keep
// the old role until they expire.
func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, _ := claimsFromContext(r.Context())

	var req updateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := s.store.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "invalid role")
		case errors.Is(err, auth.ErrUserNotFound):
			writeNotFound(w, "user not found")
		default:
			s.logger.Error("update role failed", "error", err, "user_id", id)
			writeInternalError(w, "failed to update role")
		}
		return
	}

	s.logger.Info("user role changed", "user_id", id, "role", profile.Role, "changed_by", claims.UserID)
	s.recordEvent(accountEvent{
		action:   audit.ActionRoleChange,
		userID:   id,
		username: profile.Username,
		role:     profile.Role,
		actorID:  claims.UserID,
		success:  true,
		details:  map[string]any{"role": string(profile.Role)},
	})

	writeMessage(w, http.StatusOK, "role updated", map[string]any{"user": profile})
}
