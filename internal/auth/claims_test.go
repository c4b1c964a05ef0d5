package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClaims() Claims {
	return Claims{UserID: "usr-001", Username: "alice", Role: RoleAdmin}
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	token, issued, err := svc.Issue(testClaims())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "usr-001", got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, RoleAdmin, got.Role)
	assert.True(t, got.ExpiresAt.Equal(issued.ExpiresAt), "ExpiresAt %v != %v", got.ExpiresAt, issued.ExpiresAt)
}

func TestTokenService_ExpiryIsNowPlusTTL(t *testing.T) {
	svc := NewTokenService(testSecret, 30*time.Minute)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, issued, err := svc.Issue(testClaims())
	require.NoError(t, err)
	assert.True(t, issued.ExpiresAt.Equal(fixed.Add(30*time.Minute)), "ExpiresAt = %v", issued.ExpiresAt)
}

func TestTokenService_DefaultTTL(t *testing.T) {
	assert.Equal(t, 24*time.Hour, NewTokenService(testSecret, 0).TTL())
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, _, err := svc.Issue(testClaims())
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_WrongSecret(t *testing.T) {
	token, _, err := NewTokenService(testSecret, time.Hour).Issue(testClaims())
	require.NoError(t, err)

	_, err = NewTokenService("another-secret-key-that-is-long-enough!!", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	for _, token := range []string{"", "abc.def", "not-a-valid-jwt"} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", token)
	}
}

func TestTokenService_SplicedPayload(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	staff, _, err := svc.Issue(Claims{UserID: "usr-001", Username: "bob", Role: RoleStaff})
	require.NoError(t, err)
	admin, _, err := svc.Issue(Claims{UserID: "usr-001", Username: "bob", Role: RoleAdmin})
	require.NoError(t, err)

	// admin payload under the staff signature
	s := strings.Split(staff, ".")
	a := strings.Split(admin, ".")
	_, err = svc.Verify(s[0] + "." + a[1] + "." + s[2])
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

// signRaw signs tc with method and the test secret, bypassing Issue.
func signRaw(t *testing.T, method jwt.SigningMethod, tc tokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, tc).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestTokenService_RejectsHandSignedTokens(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	inAnHour := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		method jwt.SigningMethod
		claims tokenClaims
	}{
		{
			name:   "HS512 instead of HS256",
			method: jwt.SigningMethodHS512,
			claims: tokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "usr-001", ExpiresAt: inAnHour}, Role: RoleAdmin},
		},
		{
			name:   "no expiry",
			method: jwt.SigningMethodHS256,
			claims: tokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "usr-001"}, Role: RoleAdmin},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(signRaw(t, tt.method, tt.claims))
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestTokenService_MissingFields(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	for name, claims := range map[string]Claims{
		"missing subject": {Username: "a", Role: RoleUser},
		"unknown role":    {UserID: "usr-1", Username: "a", Role: Role("root")},
	} {
		t.Run(name, func(t *testing.T) {
			token, _, err := svc.Issue(claims)
			require.NoError(t, err)

			_, err = svc.Verify(token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}
