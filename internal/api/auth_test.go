package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gatehouse-core/internal/audit"
	"github.com/nerrad567/gatehouse-core/internal/auth"
)

const iPhoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"

func loginAs(username, password string) map[string]string {
	return map[string]string{"username": username, "password": password}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/auth/register", map[string]string{
		"name": "Ann", "username": "ann", "password": "secret-pw",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decodeBody[map[string]string](t, rec)["message"])

	user, err := env.store.FindByUsername(t.Context(), "ann")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleStaff, user.Role)
	assert.True(t, env.store.VerifyPassword(user, "secret-pw"))
}

func TestRegister_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"invalid role", map[string]string{"name": "B", "username": "bob", "password": "secret-pw", "role": "owner"}, "invalid role"},
		{"missing password", map[string]string{"name": "B", "username": "bob"}, ""},
		{"short password", map[string]string{"name": "B", "username": "bob", "password": "abc"}, ""},
		{"missing name", map[string]string{"username": "bob", "password": "secret-pw"}, ""},
		{"malformed json", `{"username":`, "invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			assertError(t, env.request(t, http.MethodPost, "/auth/register", tt.body, ""), http.StatusBadRequest, tt.message)

			count, err := env.store.Count(t.Context())
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]string{"name": "Ann", "username": "ann", "password": "secret-pw"}

	require.Equal(t, http.StatusCreated, env.request(t, http.MethodPost, "/auth/register", body, "").Code)

	body["name"] = "Impostor"
	rec := env.request(t, http.MethodPost, "/auth/register", body, "")
	assertError(t, rec, http.StatusBadRequest, "username already exists")
	assert.Equal(t, ErrCodeConflict, decodeBody[errorResponse](t, rec).Code)

	user, err := env.store.FindByUsername(t.Context(), "ann")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name, "first registration is untouched")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "ann", auth.RoleAdmin)

	rec := env.request(t, http.MethodPost, "/auth/login", loginAs("ann", "password-ann"), "",
		func(r *http.Request) {
			r.RemoteAddr = "[::ffff:10.0.0.7]:40000"
			r.Header.Set("User-Agent", iPhoneUA)
		})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[loginResponse](t, rec)
	assert.Equal(t, loginUser{ID: user.ID, Username: "ann", Name: "ann name", Role: auth.RoleAdmin}, resp.User)
	assert.False(t, resp.ExpiresAt.IsZero())

	claims, err := env.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, auth.RoleAdmin, claims.Role)

	sessions, err := env.sessions.ListByUser(t.Context(), user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "10.0.0.7", sessions[0].IPAddress)
	assert.Equal(t, "Apple iPhone", sessions[0].Device)
	assert.Equal(t, resp.Token, sessions[0].Token)
}

func TestLogin_ForwardedAddress(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "ann", auth.RoleStaff)

	rec := env.request(t, http.MethodPost, "/auth/login", loginAs("ann", "password-ann"), "",
		func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		})
	require.Equal(t, http.StatusOK, rec.Code)

	sessions, err := env.sessions.ListByUser(t.Context(), user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "203.0.113.9", sessions[0].IPAddress)
	assert.Equal(t, "Unknown Device", sessions[0].Device)
}

func TestLogin_Failures(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown user":   loginAs("nobody", "whatever"),
		"wrong password": loginAs("ann", "not-the-password"),
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			env.createUser(t, "ann", auth.RoleStaff)

			assertError(t, env.request(t, http.MethodPost, "/auth/login", body, ""), http.StatusBadRequest, invalidLoginMessage)

			summaries, err := env.sessions.ListSummaries(t.Context())
			require.NoError(t, err)
			assert.Empty(t, summaries, "a failed login records no session")
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	assertError(t, env.request(t, http.MethodPost, "/auth/login", map[string]string{"username": "ann"}, ""), http.StatusBadRequest, "")
}

// signMap signs claims with HS256 and secret, bypassing the token service.
func signMap(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "root", auth.RoleAdmin)

	claims := func(exp time.Time) jwt.MapClaims {
		return jwt.MapClaims{
			"sub":      admin.ID,
			"username": admin.Username,
			"role":     string(admin.Role),
			"exp":      exp.Unix(),
		}
	}
	expired := signMap(t, testSecret, claims(time.Now().Add(-time.Hour)))
	foreign := signMap(t, "some-other-secret-that-is-long-enough", claims(time.Now().Add(time.Hour)))

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"no header", "", "missing token"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "missing token"},
		{"garbage token", "Bearer not-a-jwt", "invalid or expired token"},
		{"expired token", "Bearer " + expired, "invalid or expired token"},
		{"wrong secret", "Bearer " + foreign, "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(t, http.MethodGet, "/auth/users/all", nil, "", func(r *http.Request) {
				if tt.header != "" {
					r.Header.Set("Authorization", tt.header)
				}
			})
			assertError(t, rec, http.StatusUnauthorized, tt.message)
		})
	}
}

func TestLogin_RecordsEvents(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "ann", auth.RoleStaff)

	rec := env.request(t, http.MethodPost, "/auth/login", loginAs("ann", "password-ann"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody[loginResponse](t, rec).Token

	events := env.events.wait(t, 1)
	assert.Equal(t, audit.ActionLogin, events[0].Kind)
	assert.Equal(t, user.ID, events[0].UserID)
	assert.Equal(t, "staff", events[0].Role)

	points := env.telemetry.snapshot()
	require.Len(t, points, 1)
	assert.Equal(t, audit.ActionLogin, points[0].Kind)
	assert.True(t, points[0].Success)

	env.flushAudit(t)
	result, err := env.auditRepo.List(t.Context(), audit.Filter{Action: audit.ActionLogin})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)

	entry := result.Logs[0]
	assert.Equal(t, user.ID, entry.EntityID)
	assert.Equal(t, user.ID, entry.UserID)
	for k, v := range entry.Details {
		assert.NotEqual(t, token, v, "detail %q carries the token", k)
	}
}

func TestLoginFailed_RecordsEvents(t *testing.T) {
	env := newTestEnv(t)

	assertError(t, env.request(t, http.MethodPost, "/auth/login", loginAs("ghost", "whatever"), ""),
		http.StatusBadRequest, invalidLoginMessage)

	points := env.telemetry.snapshot()
	require.Len(t, points, 1)
	assert.Equal(t, audit.ActionLoginFailed, points[0].Kind)
	assert.False(t, points[0].Success)

	env.flushAudit(t)
	result, err := env.auditRepo.List(t.Context(), audit.Filter{Action: audit.ActionLoginFailed})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "unknown_user", result.Logs[0].Details["reason"])
	assert.NotContains(t, result.Logs[0].Details, "password")
}
