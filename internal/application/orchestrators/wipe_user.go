package orchestrators

import (
	"context"
	"errors"
	"log/slog"
)

// UserStoreForWipe defines the store interface needed by WipeUser.
type UserStoreForWipe interface {
	Delete(ctx context.Context, id string) error
}

// WipeUserInput carries input for the wipe orchestrator.
type WipeUserInput struct {
	UserID string
}

// WipeUserDeps holds dependencies for WipeUser.
type WipeUserDeps struct {
	UserStore UserStoreForWipe
}

// ExecuteWipeUser deletes a user and everything hanging off it.
// The payment and membership rows go with the user via the foreign key
// cascade, so the store delete is the whole operation.
// PRE: UserID is non-empty
// POST: User, payments and membership are gone
func ExecuteWipeUser(ctx context.Context, input WipeUserInput, deps WipeUserDeps) error {
	if input.UserID == "" {
		return errors.New("user ID is required")
	}

	if err := deps.UserStore.Delete(ctx, input.UserID); err != nil {
		return err
	}

	slog.Info("user_event", "event", "user_wiped", "user_id", input.UserID)
	return nil
}
