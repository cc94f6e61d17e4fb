package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	emailAdapter "studyhall/internal/adapters/email"
	membershipDomain "studyhall/internal/domain/membership"
	outboxDomain "studyhall/internal/domain/outbox"
	paymentDomain "studyhall/internal/domain/payment"
	userDomain "studyhall/internal/domain/user"
)

// fixedNow is the clock used by orchestrator tests.
var fixedNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

// seqID returns a deterministic ID generator.
func seqID(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// --- Mock user store ---

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

func (m *mockUserStore) GetByIdentityID(_ context.Context, identityID string) (userDomain.User, error) {
	for _, u := range m.users {
		if u.IdentityID == identityID {
			return u, nil
		}
	}
	return userDomain.User{}, userDomain.ErrNotFound
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (userDomain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return userDomain.User{}, userDomain.ErrNotFound
}

func (m *mockUserStore) Save(_ context.Context, u userDomain.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserStore) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return userDomain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserStore) ListByRole(_ context.Context, role string) ([]userDomain.User, error) {
	var result []userDomain.User
	for _, u := range m.users {
		if u.Role == role {
			result = append(result, u)
		}
	}
	return result, nil
}

// --- Mock payment store ---

type mockPaymentStore struct {
	payments map[string]paymentDomain.Payment
}

func newMockPaymentStore() *mockPaymentStore {
	return &mockPaymentStore{payments: make(map[string]paymentDomain.Payment)}
}

func (m *mockPaymentStore) GetByID(_ context.Context, id string) (paymentDomain.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return paymentDomain.Payment{}, paymentDomain.ErrNotFound
	}
	return p, nil
}

func (m *mockPaymentStore) GetByTransactionID(_ context.Context, transactionID string) (paymentDomain.Payment, error) {
	for _, p := range m.payments {
		if p.TransactionID == transactionID {
			return p, nil
		}
	}
	return paymentDomain.Payment{}, paymentDomain.ErrNotFound
}

func (m *mockPaymentStore) GetPendingForUser(_ context.Context, userID string) (paymentDomain.Payment, error) {
	for _, p := range m.payments {
		if p.UserID == userID && p.Status == paymentDomain.StatusPending {
			return p, nil
		}
	}
	return paymentDomain.Payment{}, paymentDomain.ErrNotFound
}

func (m *mockPaymentStore) Create(_ context.Context, p paymentDomain.Payment) error {
	for _, existing := range m.payments {
		if existing.TransactionID == p.TransactionID {
			return paymentDomain.ErrDuplicateTransaction
		}
	}
	m.payments[p.ID] = p
	return nil
}

func (m *mockPaymentStore) UpdateStatus(_ context.Context, id string, status string) error {
	p, ok := m.payments[id]
	if !ok {
		return paymentDomain.ErrNotFound
	}
	p.Status = status
	m.payments[id] = p
	return nil
}

// --- Mock membership store ---

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

func (m *mockMembershipStore) Upsert(_ context.Context, ms membershipDomain.Membership) error {
	m.memberships[ms.UserID] = ms
	return nil
}

func (m *mockMembershipStore) ListByStatus(_ context.Context, status string) ([]membershipDomain.Membership, error) {
	var result []membershipDomain.Membership
	for _, ms := range m.memberships {
		if ms.Status == status {
			result = append(result, ms)
		}
	}
	return result, nil
}

func (m *mockMembershipStore) ListAll(_ context.Context) ([]membershipDomain.Membership, error) {
	var result []membershipDomain.Membership
	for _, ms := range m.memberships {
		result = append(result, ms)
	}
	return result, nil
}

// --- Mock setting store ---

type mockSettingStore struct {
	values map[string]string
}

func newMockSettingStore() *mockSettingStore {
	return &mockSettingStore{values: make(map[string]string)}
}

func (m *mockSettingStore) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *mockSettingStore) Upsert(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

// --- Mock outbox store ---

type mockOutboxStore struct {
	mu      sync.Mutex
	entries map[string]outboxDomain.Entry
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: make(map[string]outboxDomain.Entry)}
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outboxDomain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return outboxDomain.Entry{}, errors.New("not found")
	}
	return e, nil
}

func (m *mockOutboxStore) Save(_ context.Context, e outboxDomain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outboxDomain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []outboxDomain.Entry
	for _, e := range m.entries {
		if e.CanRetry() {
			result = append(result, e)
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *mockOutboxStore) List(_ context.Context, limit int) ([]outboxDomain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []outboxDomain.Entry
	for _, e := range m.entries {
		result = append(result, e)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// --- Mock email sender ---

type mockSender struct {
	mu      sync.Mutex
	sent    []emailAdapter.SendRequest
	failAll bool
}

func (m *mockSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return emailAdapter.SendResult{}, errors.New("provider unavailable")
	}
	m.sent = append(m.sent, req)
	return emailAdapter.SendResult{MessageID: fmt.Sprintf("msg-%d", len(m.sent)), SentAt: fixedNow}, nil
}

func (m *mockSender) SendBatch(_ context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	var results []emailAdapter.SendResult
	for _, req := range reqs {
		r, err := m.Send(context.Background(), req)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// newTestNotify builds NotifyDeps backed by the given mocks.
func newTestNotify(sender *mockSender, outbox *mockOutboxStore) NotifyDeps {
	return NotifyDeps{
		EmailSender: sender,
		OutboxStore: outbox,
		GenerateID:  seqID("id"),
		Now:         func() time.Time { return fixedNow },
	}
}
