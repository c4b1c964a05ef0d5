package api

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/nerrad567/gatehouse-core/internal/audit"
)

// auditActions are the values accepted by the action filter.
var auditActions = []any{
	audit.ActionRegister,
	audit.ActionLogin,
	audit.ActionLoginFailed,
	audit.ActionRoleChange,
	audit.ActionDelete,
}

// auditQuery is the parsed query string of GET /audit.
type auditQuery struct {
	Action string
	Limit  int
	Offset int
}

func (q auditQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Action, validation.In(auditActions...)),
		validation.Field(&q.Limit, validation.Min(0)),
		validation.Field(&q.Offset, validation.Min(0)),
	)
}

// queueAudit hands an account event to the audit writer, if one is configured.
func (s *Server) queueAudit(ev accountEvent) {
	if s.auditWriter == nil {
		return
	}
	s.auditWriter.Enqueue(&audit.AuditLog{
		Action:     ev.action,
		EntityType: audit.EntityUser,
		EntityID:   ev.userID,
		UserID:     ev.actorID,
		Source:     "api",
		Details:    ev.details,
	})
}

// handleListAuditLogs pages through the account activity trail, newest
// first. Filters: action, entity_id (account acted upon), user_id (acting
// account). limit defaults to 50 and is capped at 200.
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "audit logging not configured")
		return
	}

	q := r.URL.Query()
	params := auditQuery{Action: q.Get("action")}
	for name, dst := range map[string]*int{"limit": &params.Limit, "offset": &params.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, name+" must be an integer")
			return
		}
		*dst = n
	}
	if err := params.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	result, err := s.auditRepo.List(r.Context(), audit.Filter{
		Action:     params.Action,
		EntityType: audit.EntityUser,
		EntityID:   q.Get("entity_id"),
		UserID:     q.Get("user_id"),
		Limit:      params.Limit,
		Offset:     params.Offset,
	})
	if err != nil {
		s.logger.Error("list audit logs failed", "error", err)
		writeInternalError(w, "failed to list audit logs")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
