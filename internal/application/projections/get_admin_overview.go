package projections

import (
	"context"
	"errors"
	"time"

	"studyhall/internal/adapters/storage/user"
	membershipDomain "studyhall/internal/domain/membership"
	paymentDomain "studyhall/internal/domain/payment"
	userDomain "studyhall/internal/domain/user"
)

// OverviewUserStore defines the user store interface needed by the admin overview.
type OverviewUserStore interface {
	GetByID(ctx context.Context, id string) (userDomain.User, error)
	List(ctx context.Context, filter user.ListFilter) ([]userDomain.User, error)
}

// OverviewPaymentStore defines the payment store interface needed by the admin overview.
type OverviewPaymentStore interface {
	ListByStatus(ctx context.Context, status string) ([]paymentDomain.Payment, error)
}

// GetAdminOverviewDeps holds dependencies for the admin overview projection.
type GetAdminOverviewDeps struct {
	UserStore       OverviewUserStore
	PaymentStore    OverviewPaymentStore
	MembershipStore PassMembershipStore
	Now             func() time.Time
}

// PendingPaymentView pairs a pending payment with its owner.
type PendingPaymentView struct {
	Payment paymentDomain.Payment
	User    userDomain.User
}

// MemberView pairs a user with their membership state.
type MemberView struct {
	User            userDomain.User
	Membership      *membershipDomain.Membership
	EffectiveActive bool
}

// AdminOverviewResult carries the back-office landing view.
type AdminOverviewResult struct {
	PendingPayments []PendingPaymentView
	Members         []MemberView
}

// QueryGetAdminOverview loads the verification queue and the member roster.
func QueryGetAdminOverview(ctx context.Context, deps GetAdminOverviewDeps) (AdminOverviewResult, error) {
	var result AdminOverviewResult
	now := deps.Now()

	pending, err := deps.PaymentStore.ListByStatus(ctx, paymentDomain.StatusPending)
	if err != nil {
		return AdminOverviewResult{}, err
	}
	for _, p := range pending {
		view := PendingPaymentView{Payment: p}
		if u, err := deps.UserStore.GetByID(ctx, p.UserID); err == nil {
			view.User = u
		}
		result.PendingPayments = append(result.PendingPayments, view)
	}

	users, err := deps.UserStore.List(ctx, user.ListFilter{})
	if err != nil {
		return AdminOverviewResult{}, err
	}
	for _, u := range users {
		view := MemberView{User: u}
		m, err := deps.MembershipStore.GetByUserID(ctx, u.ID)
		if err == nil {
			view.Membership = &m
			view.EffectiveActive = m.EffectiveActive(now)
		} else if !errors.Is(err, membershipDomain.ErrNotFound) {
			return AdminOverviewResult{}, err
		}
		result.Members = append(result.Members, view)
	}

	return result, nil
}
