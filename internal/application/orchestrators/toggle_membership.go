package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	membershipDomain "studyhall/internal/domain/membership"
)

// ToggleMembershipInput carries input for the manual toggle orchestrator.
type ToggleMembershipInput struct {
	UserID string
}

// ToggleMembershipDeps holds dependencies for ToggleMembership.
type ToggleMembershipDeps struct {
	MembershipStore MembershipStore
	GenerateID      func() string
	Now             func() time.Time
}

// ExecuteToggleMembership flips a user's membership status as a manual
// admin override.
// PRE: UserID is non-empty
// POST: No prior row → INACTIVE row with null dates. Otherwise status
// flipped; a window is set only on first-ever activation, an existing
// window is never refreshed here
func ExecuteToggleMembership(ctx context.Context, input ToggleMembershipInput, deps ToggleMembershipDeps) (membershipDomain.Membership, error) {
	if input.UserID == "" {
		return membershipDomain.Membership{}, errors.New("user ID is required")
	}

	m, err := deps.MembershipStore.GetByUserID(ctx, input.UserID)
	if errors.Is(err, membershipDomain.ErrNotFound) {
		m = membershipDomain.Membership{
			ID:     deps.GenerateID(),
			UserID: input.UserID,
			Status: membershipDomain.StatusInactive,
		}
		if err := deps.MembershipStore.Upsert(ctx, m); err != nil {
			return membershipDomain.Membership{}, err
		}
		slog.Info("membership_event", "event", "membership_created_inactive", "user_id", input.UserID)
		return m, nil
	}
	if err != nil {
		return membershipDomain.Membership{}, fmt.Errorf("load membership: %w", err)
	}

	m.Toggle(deps.Now())
	if err := deps.MembershipStore.Upsert(ctx, m); err != nil {
		return membershipDomain.Membership{}, err
	}

	slog.Info("membership_event", "event", "membership_toggled", "user_id", input.UserID, "status", m.Status)
	return m, nil
}
