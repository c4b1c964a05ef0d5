package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the token lifetime used when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// Claims are the identity facts carried inside an issued token.
type Claims struct {
	UserID    string
	Username  string
	Role      Role
	ExpiresAt time.Time
}

// tokenClaims is the JWT wire form of Claims.
type tokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// TokenService issues and verifies HS256 tokens. The secret is bound once at
// construction and never changes afterwards.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService binds secret and ttl. A non-positive ttl uses DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for c with expiry now+ttl. The returned Claims carry
// the effective expiry, truncated to the second as encoded in the token.
func (s *TokenService) Issue(c Claims) (string, Claims, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl).Truncate(time.Second)

	tc := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Username: c.Username,
		Role:     c.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(s.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("signing token: %w", err)
	}

	c.ExpiresAt = expiresAt
	return signed, c, nil
}

// Verify checks the signature and expiry of token and returns its claims.
// A correctly signed token past its expiry yields ErrTokenExpired; every
// other failure yields ErrTokenInvalid.
func (s *TokenService) Verify(token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return Claims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}
	if tc.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if !tc.Role.IsValid() {
		return Claims{}, fmt.Errorf("%w: bad role %q", ErrTokenInvalid, tc.Role)
	}

	return Claims{
		UserID:    tc.Subject,
		Username:  tc.Username,
		Role:      tc.Role,
		ExpiresAt: tc.ExpiresAt.UTC(),
	}, nil
}
