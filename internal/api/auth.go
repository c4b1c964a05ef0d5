package api

import (
	"errors"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/nerrad567/gatehouse-core/internal/audit"
	"github.com/nerrad567/gatehouse-core/internal/auth"
	"github.com/nerrad567/gatehouse-core/internal/clientinfo"
)

// Password length bounds. bcrypt ignores input past 72 bytes.
const (
	minPasswordLength = 6
	maxPasswordLength = 72
)

// invalidLoginMessage is returned for both unknown usernames and wrong
// passwords.
const invalidLoginMessage = "invalid username or password"

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate checks field presence and lengths. The role is checked by the
// credential store.
func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 64)),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLength, maxPasswordLength)),
	)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type loginUser struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Role     auth.Role `json:"role"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      loginUser `json:"user"`
}

// handleRegister creates an account. A taken username or an unknown role is
// a 400.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := s.store.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "invalid role")
		case errors.Is(err, auth.ErrUsernameExists):
			writeError(w, http.StatusBadRequest, ErrCodeConflict, "username already exists")
		default:
			s.logger.Error("register failed", "error", err, "request_id", requestIDFromContext(r.Context()))
			writeInternalError(w, "registration failed")
		}
		return
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	s.recordEvent(accountEvent{
		action:   audit.ActionRegister,
		userID:   user.ID,
		username: user.Username,
		role:     user.Role,
		success:  true,
		details:  map[string]any{"username": user.Username, "role": string(user.Role)},
	})

	writeMessage(w, http.StatusCreated, "user registered", nil)
}

// handleLogin verifies credentials, issues a token, and records a session.
// A session row exists only for logins that return 200.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	ip := clientinfo.ClientAddress(r)
	device := s.devices.Label(r.UserAgent())

	user, err := s.store.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		var reason string
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			reason = "unknown_user"
		case errors.Is(err, auth.ErrInvalidCredentials):
			reason = "wrong_password"
		default:
			s.logger.Error("login lookup failed", "error", err, "request_id", requestIDFromContext(r.Context()))
			writeInternalError(w, "login failed")
			return
		}

		s.logger.Info("login rejected", "reason", reason, "ip", ip)
		s.recordEvent(accountEvent{
			action: audit.ActionLoginFailed,
			ip:     ip,
			device: device,
			details: map[string]any{
				"username": req.Username,
				"reason":   reason,
				"ip":       ip,
				"device":   device,
			},
		})
		writeError(w, http.StatusBadRequest, ErrCodeInvalidCredentials, invalidLoginMessage)
		return
	}

	token, claims, err := s.tokens.Issue(auth.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		s.logger.Error("token issue failed", "error", err, "user_id", user.ID)
		writeInternalError(w, "login failed")
		return
	}

	sess, err := s.recorder.Record(r.Context(), user.ID, ip, device, token)
	if err != nil {
		s.logger.Error("session record failed", "error", err, "user_id", user.ID)
		writeInternalError(w, "login failed")
		return
	}

	s.logger.Info("user logged in", "user_id", user.ID, "session_id", sess.ID, "device", device)
	s.recordEvent(accountEvent{
		action:   audit.ActionLogin,
		userID:   user.ID,
		username: user.Username,
		role:     user.Role,
		actorID:  user.ID,
		ip:       ip,
		device:   device,
		success:  true,
		details:  map[string]any{"session_id": sess.ID, "ip": ip, "device": device},
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		User: loginUser{
			ID:       user.ID,
			Username: user.Username,
			Name:     user.Name,
			Role:     user.Role,
		},
	})
}
