package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Role is an authorisation tier. It is the single type used wherever a role
// is validated, compared, or stored.
type Role string

const (
	// RoleAdmin can list, delete, and re-role users and read sessions and audit logs.
	RoleAdmin Role = "admin"

	// RoleStaff is the default role given at registration.
	RoleStaff Role = "staff"

	// RoleUser is an ordinary account with no administrative reach.
	RoleUser Role = "user"
)

// DefaultRole is assigned when registration does not name a role.
const DefaultRole = RoleStaff

// ValidRoles is the closed set of roles accepted anywhere in the system.
var ValidRoles = []Role{RoleAdmin, RoleStaff, RoleUser}

// IsValid reports whether r is one of ValidRoles.
func (r Role) IsValid() bool {
	return slices.Contains(ValidRoles, r)
}

// ParseRole converts raw input into a Role. An empty string yields
// DefaultRole; anything outside ValidRoles yields ErrInvalidRole.
func ParseRole(raw string) (Role, error) {
	if raw == "" {
		return DefaultRole, nil
	}
	r := Role(raw)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
	return r, nil
}

// User is a stored account. PasswordHash never leaves this package in a
// response; use Profile for output.
type User struct {
	ID           string
	Username     string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the outward shape of a User. It has no password field.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile returns the password-free view of u.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Sentinel errors for auth operations.
var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrUsernameExists     = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenMissing       = errors.New("missing token")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrForbidden          = errors.New("insufficient role")
)
