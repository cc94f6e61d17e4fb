package projections

import (
	"context"
	"time"

	"studyhall/internal/adapters/storage/user"
	membershipDomain "studyhall/internal/domain/membership"
	paymentDomain "studyhall/internal/domain/payment"
	userDomain "studyhall/internal/domain/user"
)

// fixedNow is the clock used by projection tests.
var fixedNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

type mockUserStore struct {
	users map[string]userDomain.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]userDomain.User)}
}

func (m *mockUserStore) GetByID(_ context.Context, id string) (userDomain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return userDomain.User{}, userDomain.ErrNotFound
	}
	return u, nil
}

func (m *mockUserStore) List(_ context.Context, _ user.ListFilter) ([]userDomain.User, error) {
	var result []userDomain.User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

type mockMembershipStore struct {
	memberships map[string]membershipDomain.Membership // keyed by user id
}

func newMockMembershipStore() *mockMembershipStore {
	return &mockMembershipStore{memberships: make(map[string]membershipDomain.Membership)}
}

func (m *mockMembershipStore) GetByUserID(_ context.Context, userID string) (membershipDomain.Membership, error) {
	ms, ok := m.memberships[userID]
	if !ok {
		return membershipDomain.Membership{}, membershipDomain.ErrNotFound
	}
	return ms, nil
}

type mockPaymentStore struct {
	payments map[string]paymentDomain.Payment
}

func newMockPaymentStore() *mockPaymentStore {
	return &mockPaymentStore{payments: make(map[string]paymentDomain.Payment)}
}

func (m *mockPaymentStore) ListByUser(_ context.Context, userID string) ([]paymentDomain.Payment, error) {
	var result []paymentDomain.Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockPaymentStore) GetPendingForUser(_ context.Context, userID string) (paymentDomain.Payment, error) {
	for _, p := range m.payments {
		if p.UserID == userID && p.Status == paymentDomain.StatusPending {
			return p, nil
		}
	}
	return paymentDomain.Payment{}, paymentDomain.ErrNotFound
}

func (m *mockPaymentStore) ListByStatus(_ context.Context, status string) ([]paymentDomain.Payment, error) {
	var result []paymentDomain.Payment
	for _, p := range m.payments {
		if p.Status == status {
			result = append(result, p)
		}
	}
	return result, nil
}

type mockSettingStore struct {
	values map[string]string
}

func newMockSettingStore() *mockSettingStore {
	return &mockSettingStore{values: make(map[string]string)}
}

func (m *mockSettingStore) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

// window returns start/expiry pointers for a membership whose expiry is
// offsetDays from fixedNow.
func window(offsetDays int) (*time.Time, *time.Time) {
	start := fixedNow.AddDate(0, 0, offsetDays-30)
	expiry := fixedNow.AddDate(0, 0, offsetDays)
	return &start, &expiry
}
