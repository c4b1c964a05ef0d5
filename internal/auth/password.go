package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the minimum cost accepted by configuration.
const DefaultBcryptCost = 10

// PasswordHasher hashes and verifies passwords with bcrypt at a fixed cost.
type PasswordHasher struct {
	cost int

	decoyOnce sync.Once
	decoy     []byte
}

// NewPasswordHasher returns a hasher using cost. Costs outside bcrypt's
// range fall back to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the salted bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A malformed hash is
// reported as a mismatch.
func (h *PasswordHasher) Verify(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// NeedsRehash reports whether hash was produced at a cost other than the
// hasher's. Unreadable hashes always need rehashing.
func (h *PasswordHasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost != h.cost
}

// Burn spends the same work as Verify against a throwaway hash, so a lookup
// miss costs as much as a wrong password.
func (h *PasswordHasher) Burn(password string) {
	h.decoyOnce.Do(func() {
		h.decoy, _ = bcrypt.GenerateFromPassword([]byte("gatehouse-decoy"), h.cost) //nolint:errcheck // fixed input
	})
	_ = bcrypt.CompareHashAndPassword(h.decoy, []byte(password))
}
