package orchestrators

import (
	"context"
	"testing"
	"time"

	membershipDomain "studyhall/internal/domain/membership"
)

func newToggleDeps() (ToggleMembershipDeps, *mockMembershipStore) {
	memberships := newMockMembershipStore()
	deps := ToggleMembershipDeps{
		MembershipStore: memberships,
		GenerateID:      seqID("m"),
		Now:             func() time.Time { return fixedNow },
	}
	return deps, memberships
}

func TestExecuteToggleMembership_NoRowCreatesInactive(t *testing.T) {
	deps, _ := newToggleDeps()

	m, err := ExecuteToggleMembership(context.Background(), ToggleMembershipInput{UserID: "u-1"}, deps)
	if err != nil {
		t.Fatalf("ExecuteToggleMembership failed: %v", err)
	}

	if m.Status != membershipDomain.StatusInactive {
		t.Errorf("status = %q, want INACTIVE", m.Status)
	}
	if m.StartDate != nil || m.ExpiryDate != nil {
		t.Error("fresh row must have null dates")
	}
}

func TestExecuteToggleMembership_FirstActivationSetsWindow(t *testing.T) {
	deps, memberships := newToggleDeps()
	memberships.memberships["u-1"] = membershipDomain.Membership{
		ID: "m-1", UserID: "u-1", Status: membershipDomain.StatusInactive,
	}

	m, err := ExecuteToggleMembership(context.Background(), ToggleMembershipInput{UserID: "u-1"}, deps)
	if err != nil {
		t.Fatalf("ExecuteToggleMembership failed: %v", err)
	}

	if m.Status != membershipDomain.StatusActive {
		t.Errorf("status = %q, want ACTIVE", m.Status)
	}
	wantExpiry := fixedNow.AddDate(0, 0, 30)
	if m.ExpiryDate == nil || !m.ExpiryDate.Equal(wantExpiry) {
		t.Errorf("expiry = %v, want %v", m.ExpiryDate, wantExpiry)
	}
}

func TestExecuteToggleMembership_ReactivationKeepsExpiredWindow(t *testing.T) {
	deps, memberships := newToggleDeps()

	// Window already in the past: the toggle must not refresh it.
	start := fixedNow.AddDate(0, 0, -60)
	expiry := fixedNow.AddDate(0, 0, -30)
	memberships.memberships["u-1"] = membershipDomain.Membership{
		ID: "m-1", UserID: "u-1", Status: membershipDomain.StatusInactive,
		StartDate: &start, ExpiryDate: &expiry,
	}

	m, err := ExecuteToggleMembership(context.Background(), ToggleMembershipInput{UserID: "u-1"}, deps)
	if err != nil {
		t.Fatalf("ExecuteToggleMembership failed: %v", err)
	}

	if m.Status != membershipDomain.StatusActive {
		t.Errorf("status = %q, want ACTIVE", m.Status)
	}
	if !m.ExpiryDate.Equal(expiry) {
		t.Errorf("expiry = %v, want untouched %v", m.ExpiryDate, expiry)
	}

	// The row is now stale-active: flagged ACTIVE yet not effective.
	if m.EffectiveActive(fixedNow) {
		t.Error("stale-active row must not be effective")
	}
}

func TestExecuteToggleMembership_DeactivatesActive(t *testing.T) {
	deps, memberships := newToggleDeps()

	start := fixedNow.AddDate(0, 0, -5)
	expiry := fixedNow.AddDate(0, 0, 25)
	memberships.memberships["u-1"] = membershipDomain.Membership{
		ID: "m-1", UserID: "u-1", Status: membershipDomain.StatusActive,
		StartDate: &start, ExpiryDate: &expiry,
	}

	m, err := ExecuteToggleMembership(context.Background(), ToggleMembershipInput{UserID: "u-1"}, deps)
	if err != nil {
		t.Fatalf("ExecuteToggleMembership failed: %v", err)
	}

	if m.Status != membershipDomain.StatusInactive {
		t.Errorf("status = %q, want INACTIVE", m.Status)
	}
	// Dates survive the deactivation.
	if !m.ExpiryDate.Equal(expiry) {
		t.Errorf("expiry = %v, want untouched %v", m.ExpiryDate, expiry)
	}
}

func TestExecuteToggleMembership_EmptyUserID(t *testing.T) {
	deps, _ := newToggleDeps()

	if _, err := ExecuteToggleMembership(context.Background(), ToggleMembershipInput{}, deps); err == nil {
		t.Error("expected error for empty user id")
	}
}
