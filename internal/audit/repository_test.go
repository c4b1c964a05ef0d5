package audit

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gatehouse-core/internal/infrastructure/database"
	_ "github.com/nerrad567/gatehouse-core/migrations"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "audit-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(t.Context()))
	return db.DB
}

func TestSQLiteRepository_CreateAndList(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	entry := &AuditLog{
		Action:     ActionRegister,
		EntityType: EntityUser,
		EntityID:   "usr-1",
		Source:     "api",
		Details:    map[string]any{"username": "alice", "role": "staff"},
	}
	require.NoError(t, repo.Create(ctx, entry))
	assert.Contains(t, entry.ID, "aud-")
	assert.Len(t, entry.ID, len("aud-")+36, "id carries a full uuid")

	result, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, result.Logs, 1)

	got := result.Logs[0]
	assert.Equal(t, ActionRegister, got.Action)
	assert.Equal(t, "usr-1", got.EntityID)
	assert.Empty(t, got.UserID)
	assert.Equal(t, "alice", got.Details["username"])
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, defaultLimit, result.Limit)
}

func TestSQLiteRepository_ListFiltersAndOrder(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []*AuditLog{
		{Action: ActionLogin, EntityType: EntityUser, EntityID: "usr-1", UserID: "usr-1", Source: "api", CreatedAt: base},
		{Action: ActionLoginFailed, EntityType: EntityUser, Source: "api", CreatedAt: base.Add(time.Minute)},
		{Action: ActionLogin, EntityType: EntityUser, EntityID: "usr-2", UserID: "usr-2", Source: "api", CreatedAt: base.Add(2 * time.Minute)},
		{Action: ActionDelete, EntityType: EntityUser, EntityID: "usr-2", UserID: "usr-1", Source: "api", CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, repo.Create(ctx, e))
	}

	logins, err := repo.List(ctx, Filter{Action: ActionLogin})
	require.NoError(t, err)
	require.Len(t, logins.Logs, 2)
	assert.Equal(t, "usr-2", logins.Logs[0].EntityID, "newest first")
	assert.Equal(t, "usr-1", logins.Logs[1].EntityID)

	byActor, err := repo.List(ctx, Filter{UserID: "usr-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, byActor.Total)

	page, err := repo.List(ctx, Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, ActionLogin, page.Logs[0].Action)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, defaultLimit, clamp(Filter{}).Limit)
	assert.Equal(t, maxLimit, clamp(Filter{Limit: 10_000}).Limit)
	assert.Equal(t, 0, clamp(Filter{Offset: -5}).Offset)
	assert.Equal(t, 25, clamp(Filter{Limit: 25}).Limit)
}
