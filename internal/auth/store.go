package auth

import (
	"context"
	"errors"
	"fmt"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Name     string
	Username string
	Password string
	Role     string
}

// Store owns user identity and password verification.
type Store struct {
	users  UserRepository
	hasher *PasswordHasher
}

// NewStore returns a Store persisting to users and hashing with hasher.
func NewStore(users UserRepository, hasher *PasswordHasher) *Store {
	return &Store{users: users, hasher: hasher}
}

// Register creates a user. The role defaults to staff; an unknown role
// fails with ErrInvalidRole before anything is hashed or stored. A taken
// username fails with ErrUsernameExists from the storage constraint.
func (s *Store) Register(ctx context.Context, in RegisterInput) (*User, error) {
	role, err := ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("registering %q: %w", in.Username, err)
	}
	return user, nil
}

// FindByUsername returns the user with username or ErrUserNotFound.
func (s *Store) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.users.GetByUsername(ctx, username)
}

// VerifyPassword reports whether raw matches the user's stored hash.
func (s *Store) VerifyPassword(user *User, raw string) bool {
	return s.hasher.Verify(user.PasswordHash, raw)
}

// Authenticate looks up username and checks password. An unknown username
// yields ErrUserNotFound and a wrong password ErrInvalidCredentials; both
// paths run one bcrypt comparison.
//
// A successful login whose stored hash was made at a different cost is
// rehashed at the current cost. A failed rehash leaves the old hash in
// place and does not fail the login.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.hasher.Burn(password)
		}
		return nil, err
	}
	if !s.VerifyPassword(user, password) {
		return nil, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		if hash, err := s.hasher.Hash(password); err == nil {
			if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err == nil {
				user.PasswordHash = hash
			}
		}
	}
	return user, nil
}

// ListAll returns every user as a Profile.
func (s *Store) ListAll(ctx context.Context) ([]Profile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	return profiles, nil
}

// UpdateRole changes the role of user id. The role is validated before any
// storage call.
func (s *Store) UpdateRole(ctx context.Context, id, rawRole string) (*Profile, error) {
	role := Role(rawRole)
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, rawRole)
	}

	user, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	p := user.Profile()
	return &p, nil
}

// Delete removes user id, returning ErrUserNotFound when absent.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// Get returns user id.
func (s *Store) Get(ctx context.Context, id string) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// Count returns the number of stored users.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.users.Count(ctx)
}
