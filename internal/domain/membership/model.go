package membership

import (
	"errors"
	"time"
)

// Status constants
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// ValidityDays is the fixed membership window applied on activation.
const ValidityDays = 30

// Domain errors
var (
	ErrNotFound      = errors.New("membership not found")
	ErrInvalidStatus = errors.New("status must be 'ACTIVE' or 'INACTIVE'")
)

// Membership tracks a user's access window. Dates are nil until the
// first activation. A row whose status is ACTIVE but whose expiry has
// passed is a stale-active row: it is never eagerly corrected, so every
// consumer must go through EffectiveActive rather than Status.
type Membership struct {
	ID         string
	UserID     string
	Status     string
	StartDate  *time.Time
	ExpiryDate *time.Time
}

// Validate checks if the Membership has valid data.
func (m *Membership) Validate() error {
	if m.UserID == "" {
		return errors.New("membership must belong to a user")
	}
	if m.Status != StatusActive && m.Status != StatusInactive {
		return ErrInvalidStatus
	}
	return nil
}

// EffectiveActive is the sole access predicate: status ACTIVE with an
// expiry strictly in the future. Stale-active rows report false.
// INVARIANT: Membership fields are not mutated
func (m *Membership) EffectiveActive(now time.Time) bool {
	return m.Status == StatusActive && m.ExpiryDate != nil && m.ExpiryDate.After(now)
}

// ActivateFreshWindow sets the membership ACTIVE with a window of
// ValidityDays starting at now, unconditionally overwriting any prior
// window. Renewal restarts the clock from the approval moment; there is
// no grace-period stacking.
// POST: Status is ACTIVE, StartDate=now, ExpiryDate=now+30d
func (m *Membership) ActivateFreshWindow(now time.Time) {
	expiry := now.AddDate(0, 0, ValidityDays)
	m.Status = StatusActive
	m.StartDate = &now
	m.ExpiryDate = &expiry
}

// Toggle flips the status for the manual admin override. A flip to
// ACTIVE initializes a fresh window only when no expiry has ever been
// set; an existing window — even one already in the past — is left
// untouched, producing the stale-active condition that EffectiveActive
// guards against. This asymmetry with ActivateFreshWindow is the
// documented manual-override policy, not an oversight.
// POST: Status flipped; dates set only on first-ever activation
func (m *Membership) Toggle(now time.Time) {
	if m.Status == StatusActive {
		m.Status = StatusInactive
		return
	}
	m.Status = StatusActive
	if m.ExpiryDate == nil {
		m.ActivateFreshWindow(now)
	}
}
