package auth

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nerrad567/gatehouse-core/internal/infrastructure/database"
	_ "github.com/nerrad567/gatehouse-core/migrations"
)

// testSecret is long enough to pass configuration validation.
const testSecret = "test-secret-key-for-jwt-signing-0123456789"

// testDB opens a temp-file SQLite database with the full schema applied.
// The database is closed when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "auth-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	require.NoError(t, err, "opening test db")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(t.Context()), "applying migrations")
	return db.DB
}

// testHasher uses the minimum bcrypt cost to keep tests fast.
func testHasher() *PasswordHasher {
	return NewPasswordHasher(bcrypt.MinCost)
}

// testStore returns a Store over a fresh database.
func testStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db := testDB(t)
	return NewStore(NewUserRepository(db), testHasher()), db
}

// seedTestUser inserts a user with password "test-password" and returns it.
func seedTestUser(t *testing.T, db *sql.DB, username string, role Role) *User {
	t.Helper()

	hash, err := testHasher().Hash("test-password")
	require.NoError(t, err)

	user := &User{
		Username:     username,
		Name:         username,
		PasswordHash: hash,
		Role:         role,
	}
	require.NoError(t, NewUserRepository(db).Create(t.Context(), user), "creating %s", username)
	return user
}
