package auth

import (
	"context"
	"fmt"
	"log/slog"
)

// bootstrapAdminName is the display name given to the seeded admin.
const bootstrapAdminName = "Administrator"

// EnsureAdmin creates an admin account when the store is empty and a
// bootstrap username is configured. It returns true if an account was created.
func EnsureAdmin(ctx context.Context, store *Store, username, password string, logger *slog.Logger) (bool, error) {
	if username == "" {
		return false, nil
	}

	count, err := store.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("checking user count: %w", err)
	}
	if count > 0 {
		logger.Info("users exist, skipping admin bootstrap")
		return false, nil
	}

	user, err := store.Register(ctx, RegisterInput{
		Name:     bootstrapAdminName,
		Username: username,
		Password: password,
		Role:     string(RoleAdmin),
	})
	if err != nil {
		return false, fmt.Errorf("creating bootstrap admin: %w", err)
	}

	logger.Warn("bootstrap admin account created",
		"user_id", user.ID,
		"username", user.Username,
		"action_required", "rotate the bootstrap password",
	)
	return true, nil
}
