package payment

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status constants for the payment lifecycle.
const (
	StatusPending = "PENDING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Method tags. A submission with an unknown tag is stored as OTHER.
const (
	MethodUPIManual = "UPI_MANUAL"
	MethodCash      = "CASH"
	MethodOther     = "OTHER"
)

// Currency is fixed to a single denomination; Amount is stored in paise.
const Currency = "INR"

// Domain errors
var (
	ErrNotFound             = errors.New("payment not found")
	ErrEmptyTransactionID   = errors.New("transaction id is required")
	ErrDuplicateTransaction = errors.New("transaction id already submitted")
	ErrPendingExists        = errors.New("a pending payment already exists for this user")
	ErrNotPending           = errors.New("payment is not pending")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
)

// Payment records a member's claimed payment. A payment is created
// PENDING and transitions exactly once to SUCCESS or FAILED by an
// administrator action; terminal states are immutable.
type Payment struct {
	ID            string
	UserID        string
	Amount        int64 // paise
	Status        string
	Method        string
	TransactionID string
	CreatedAt     time.Time
}

// Validate checks if the Payment has valid data.
// PRE: Payment struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (p *Payment) Validate() error {
	if strings.TrimSpace(p.TransactionID) == "" {
		return ErrEmptyTransactionID
	}
	if p.UserID == "" {
		return errors.New("payment must belong to a user")
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Status != StatusPending && p.Status != StatusSuccess && p.Status != StatusFailed {
		return fmt.Errorf("status must be one of PENDING, SUCCESS, FAILED")
	}
	return nil
}

// IsTerminal returns true when the payment will never transition again.
// INVARIANT: Payment fields are not mutated
func (p *Payment) IsTerminal() bool {
	return p.Status == StatusSuccess || p.Status == StatusFailed
}

// Approve transitions the payment to SUCCESS.
// PRE: Status is PENDING
// POST: Status is SUCCESS
// INVARIANT: Terminal payments are never re-approved, so a duplicate
// admin click cannot re-extend a membership window.
func (p *Payment) Approve() error {
	if p.Status != StatusPending {
		return ErrNotPending
	}
	p.Status = StatusSuccess
	return nil
}

// Reject transitions the payment to FAILED.
// PRE: Status is PENDING
// POST: Status is FAILED
func (p *Payment) Reject() error {
	if p.Status != StatusPending {
		return ErrNotPending
	}
	p.Status = StatusFailed
	return nil
}

// NormalizeMethod maps a caller-supplied method tag onto a known tag.
// An empty tag defaults to UPI_MANUAL, matching the manual-confirmation
// flow; anything unrecognised is tagged OTHER.
func NormalizeMethod(method string) string {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case MethodUPIManual, "":
		return MethodUPIManual
	case MethodCash:
		return MethodCash
	default:
		return MethodOther
	}
}

// FormatAmount renders a paise amount as a rupee string for notifications.
func FormatAmount(paise int64) string {
	if paise%100 == 0 {
		return fmt.Sprintf("%d", paise/100)
	}
	return fmt.Sprintf("%d.%02d", paise/100, paise%100)
}
