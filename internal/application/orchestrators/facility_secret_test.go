package orchestrators

import (
	"context"
	"errors"
	"sort"
	"testing"

	membershipDomain "studyhall/internal/domain/membership"
	settingDomain "studyhall/internal/domain/setting"
	userDomain "studyhall/internal/domain/user"
)

type rotateFixture struct {
	deps        RotateFacilitySecretDeps
	users       *mockUserStore
	memberships *mockMembershipStore
	settings    *mockSettingStore
	sender      *mockSender
	outbox      *mockOutboxStore
}

func newRotateFixture() *rotateFixture {
	f := &rotateFixture{
		users:       newMockUserStore(),
		memberships: newMockMembershipStore(),
		settings:    newMockSettingStore(),
		sender:      &mockSender{},
		outbox:      newMockOutboxStore(),
	}
	f.deps = RotateFacilitySecretDeps{
		SettingStore:    f.settings,
		MembershipStore: f.memberships,
		UserStore:       f.users,
		Notify:          newTestNotify(f.sender, f.outbox),
		FromAddress:     "Study Hall <noreply@studyhall.test>",
	}
	return f
}

// addMember creates a user plus membership in the given state.
func (f *rotateFixture) addMember(id, email, status string, expiryDays int) {
	f.users.users[id] = userDomain.User{ID: id, IdentityID: "idn-" + id, Email: email, Role: userDomain.RoleStudent, CreatedAt: fixedNow}
	m := membershipDomain.Membership{ID: "m-" + id, UserID: id, Status: status}
	if expiryDays != 0 {
		start := fixedNow.AddDate(0, 0, expiryDays-30)
		expiry := fixedNow.AddDate(0, 0, expiryDays)
		m.StartDate = &start
		m.ExpiryDate = &expiry
	}
	f.memberships.memberships[id] = m
}

func TestExecuteRotateFacilitySecret_EmptyValue(t *testing.T) {
	f := newRotateFixture()

	_, err := ExecuteRotateFacilitySecret(context.Background(), RotateFacilitySecretInput{Value: "   "}, f.deps)
	if !errors.Is(err, settingDomain.ErrEmptyValue) {
		t.Errorf("err = %v, want ErrEmptyValue", err)
	}
}

func TestExecuteRotateFacilitySecret_NotifiesOnlyEffectiveActive(t *testing.T) {
	f := newRotateFixture()
	f.addMember("u-active", "active@test.com", membershipDomain.StatusActive, 10)
	f.addMember("u-stale", "stale@test.com", membershipDomain.StatusActive, -5) // stale-active
	f.addMember("u-inactive", "inactive@test.com", membershipDomain.StatusInactive, 10)
	f.addMember("u-nodates", "nodates@test.com", membershipDomain.StatusActive, 0) // ACTIVE, null expiry

	result, err := ExecuteRotateFacilitySecret(context.Background(), RotateFacilitySecretInput{Value: "new-secret"}, f.deps)
	if err != nil {
		t.Fatalf("ExecuteRotateFacilitySecret failed: %v", err)
	}

	if got := f.settings.values[settingDomain.KeyWiFiPassword]; got != "new-secret" {
		t.Errorf("stored secret = %q, want new-secret", got)
	}

	if result.Notified != 1 || result.Failed != 0 {
		t.Errorf("result = %+v, want 1 notified, 0 failed", result)
	}

	var to []string
	for _, req := range f.sender.sent {
		to = append(to, req.To...)
	}
	sort.Strings(to)
	if len(to) != 1 || to[0] != "active@test.com" {
		t.Errorf("notified %v, want only active@test.com", to)
	}
}

func TestExecuteRotateFacilitySecret_WriteSucceedsWhenAllSendsFail(t *testing.T) {
	f := newRotateFixture()
	f.sender.failAll = true
	f.addMember("u-1", "one@test.com", membershipDomain.StatusActive, 10)
	f.addMember("u-2", "two@test.com", membershipDomain.StatusActive, 10)

	result, err := ExecuteRotateFacilitySecret(context.Background(), RotateFacilitySecretInput{Value: "new-secret"}, f.deps)
	if err != nil {
		t.Fatalf("rotation must depend only on the write: %v", err)
	}

	if got := f.settings.values[settingDomain.KeyWiFiPassword]; got != "new-secret" {
		t.Errorf("stored secret = %q, want new-secret", got)
	}
	if result.Failed != 2 || result.Notified != 0 {
		t.Errorf("result = %+v, want 0 notified, 2 failed", result)
	}

	// Every failed send was captured for retry.
	if len(f.outbox.entries) != 2 {
		t.Errorf("outbox has %d entries, want 2", len(f.outbox.entries))
	}
}

func TestExecuteRotateFacilitySecret_NoActiveMembers(t *testing.T) {
	f := newRotateFixture()
	f.addMember("u-inactive", "inactive@test.com", membershipDomain.StatusInactive, 10)

	result, err := ExecuteRotateFacilitySecret(context.Background(), RotateFacilitySecretInput{Value: "secret"}, f.deps)
	if err != nil {
		t.Fatalf("ExecuteRotateFacilitySecret failed: %v", err)
	}
	if result.Notified != 0 || result.Failed != 0 {
		t.Errorf("result = %+v, want zero counts", result)
	}
	if len(f.sender.sent) != 0 {
		t.Errorf("sent %d emails, want 0", len(f.sender.sent))
	}
}

func TestExecuteGetFacilitySecret_EmptyWhenUnset(t *testing.T) {
	f := newRotateFixture()

	got, err := ExecuteGetFacilitySecret(context.Background(), GetFacilitySecretDeps{SettingStore: f.settings})
	if err != nil {
		t.Fatalf("ExecuteGetFacilitySecret failed: %v", err)
	}
	if got != "" {
		t.Errorf("secret = %q, want empty", got)
	}
}
