package projections

import (
	"context"
	"errors"
	"time"

	membershipDomain "studyhall/internal/domain/membership"
	userDomain "studyhall/internal/domain/user"
)

// PassUserStore defines the user store interface needed by pass verification.
type PassUserStore interface {
	GetByID(ctx context.Context, id string) (userDomain.User, error)
}

// PassMembershipStore defines the membership store interface needed by pass verification.
type PassMembershipStore interface {
	GetByUserID(ctx context.Context, userID string) (membershipDomain.Membership, error)
}

// VerifyPassQuery carries input for the public pass reader.
type VerifyPassQuery struct {
	UserID string
}

// VerifyPassDeps holds dependencies for the pass reader.
type VerifyPassDeps struct {
	UserStore       PassUserStore
	MembershipStore PassMembershipStore
	Now             func() time.Time
}

// VerifyPassResult is the public view of a member's pass. PassID is the
// truncated user id shown on the pass itself.
type VerifyPassResult struct {
	Found     bool
	IsValid   bool
	Name      string
	PassID    string
	ValidFrom *time.Time
	ValidTo   *time.Time
}

// QueryVerifyPass resolves a pass id to its validity view.
// Public and read-only: nothing is mutated, and an unknown id is a
// normal answer rather than an error.
// POST: IsValid is the effective-active predicate at query time
func QueryVerifyPass(ctx context.Context, query VerifyPassQuery, deps VerifyPassDeps) (VerifyPassResult, error) {
	u, err := deps.UserStore.GetByID(ctx, query.UserID)
	if errors.Is(err, userDomain.ErrNotFound) {
		return VerifyPassResult{Found: false}, nil
	}
	if err != nil {
		return VerifyPassResult{}, err
	}

	result := VerifyPassResult{
		Found:  true,
		Name:   u.DisplayName(),
		PassID: truncateID(u.ID),
	}

	m, err := deps.MembershipStore.GetByUserID(ctx, u.ID)
	if errors.Is(err, membershipDomain.ErrNotFound) {
		return result, nil
	}
	if err != nil {
		return VerifyPassResult{}, err
	}

	result.IsValid = m.EffectiveActive(deps.Now())
	result.ValidFrom = m.StartDate
	result.ValidTo = m.ExpiryDate
	return result, nil
}

// truncateID shortens a uuid for display on the pass.
func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
