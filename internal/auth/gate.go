package auth

import (
	"slices"
	"strings"
)

// Gate authenticates bearer tokens and checks role membership. It holds
// nothing but the token service, so one Gate serves every request.
type Gate struct {
	tokens *TokenService
}

// NewGate returns a Gate verifying tokens with tokens.
func NewGate(tokens *TokenService) *Gate {
	return &Gate{tokens: tokens}
}

// Authenticate extracts the bearer token from an Authorization header value
// and verifies it. It returns ErrTokenMissing when no token is present, or
// the ErrTokenInvalid / ErrTokenExpired error from verification.
func (g *Gate) Authenticate(authorization string) (Claims, error) {
	token := BearerToken(authorization)
	if token == "" {
		return Claims{}, ErrTokenMissing
	}
	return g.tokens.Verify(token)
}

// Authorize returns ErrForbidden unless claims.Role is one of roles.
func (g *Gate) Authorize(claims Claims, roles ...Role) error {
	if !slices.Contains(roles, claims.Role) {
		return ErrForbidden
	}
	return nil
}

// BearerToken returns the token part of a "Bearer <token>" header value.
// The scheme is matched case-insensitively.
func BearerToken(authorization string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
