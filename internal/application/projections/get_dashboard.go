package projections

import (
	"context"
	"errors"
	"time"

	membershipDomain "studyhall/internal/domain/membership"
	paymentDomain "studyhall/internal/domain/payment"
	settingDomain "studyhall/internal/domain/setting"
	userDomain "studyhall/internal/domain/user"
)

// DashboardPaymentStore defines the payment store interface needed by the dashboard.
type DashboardPaymentStore interface {
	ListByUser(ctx context.Context, userID string) ([]paymentDomain.Payment, error)
	GetPendingForUser(ctx context.Context, userID string) (paymentDomain.Payment, error)
}

// DashboardSettingStore defines the setting store interface needed by the dashboard.
type DashboardSettingStore interface {
	Get(ctx context.Context, key string) (string, error)
}

// GetDashboardQuery carries input for the member dashboard projection.
type GetDashboardQuery struct {
	UserID string
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	UserStore       PassUserStore
	MembershipStore PassMembershipStore
	PaymentStore    DashboardPaymentStore
	SettingStore    DashboardSettingStore
	Now             func() time.Time
}

// DashboardResult carries the member dashboard view.
type DashboardResult struct {
	User            userDomain.User
	Membership      *membershipDomain.Membership
	EffectiveActive bool
	Payments        []paymentDomain.Payment
	HasPending      bool
	FacilitySecret  string // only populated while effective-active
}

// QueryGetDashboard aggregates everything a member sees after login.
// INVARIANT: The facility secret is disclosed only while the membership
// is effective-active at query time
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardResult, error) {
	u, err := deps.UserStore.GetByID(ctx, query.UserID)
	if err != nil {
		return DashboardResult{}, err
	}

	result := DashboardResult{User: u}
	now := deps.Now()

	m, err := deps.MembershipStore.GetByUserID(ctx, u.ID)
	if err == nil {
		result.Membership = &m
		result.EffectiveActive = m.EffectiveActive(now)
	} else if !errors.Is(err, membershipDomain.ErrNotFound) {
		return DashboardResult{}, err
	}

	payments, err := deps.PaymentStore.ListByUser(ctx, u.ID)
	if err != nil {
		return DashboardResult{}, err
	}
	result.Payments = payments

	if _, err := deps.PaymentStore.GetPendingForUser(ctx, u.ID); err == nil {
		result.HasPending = true
	} else if !errors.Is(err, paymentDomain.ErrNotFound) {
		return DashboardResult{}, err
	}

	if result.EffectiveActive {
		secret, err := deps.SettingStore.Get(ctx, settingDomain.KeyWiFiPassword)
		if err == nil {
			result.FacilitySecret = secret
		}
	}

	return result, nil
}
