package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	emailAdapter "studyhall/internal/adapters/email"
	paymentDomain "studyhall/internal/domain/payment"
	userDomain "studyhall/internal/domain/user"
)

// UserStore defines the user persistence surface needed by orchestrators.
type UserStore interface {
	GetByID(ctx context.Context, id string) (userDomain.User, error)
	GetByIdentityID(ctx context.Context, identityID string) (userDomain.User, error)
	GetByEmail(ctx context.Context, email string) (userDomain.User, error)
	Save(ctx context.Context, u userDomain.User) error
	ListByRole(ctx context.Context, role string) ([]userDomain.User, error)
}

// PaymentStore defines the payment persistence surface needed by orchestrators.
type PaymentStore interface {
	GetByID(ctx context.Context, id string) (paymentDomain.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (paymentDomain.Payment, error)
	GetPendingForUser(ctx context.Context, userID string) (paymentDomain.Payment, error)
	Create(ctx context.Context, p paymentDomain.Payment) error
	UpdateStatus(ctx context.Context, id string, status string) error
}

// SubmitPaymentInput carries input for the payment submission orchestrator.
type SubmitPaymentInput struct {
	IdentityID    string // stable id from the identity provider
	Email         string
	Name          string
	Amount        int64 // paise
	Method        string
	TransactionID string
}

// SubmitPaymentDeps holds dependencies for SubmitPayment.
type SubmitPaymentDeps struct {
	UserStore    UserStore
	PaymentStore PaymentStore
	Notify       NotifyDeps
	FromAddress  string
}

// ExecuteSubmitPayment records a member's claimed payment as PENDING and
// notifies every admin.
// PRE: TransactionID is non-empty and globally unused; the user has no
// other PENDING payment
// POST: User exists (created on first contact), PENDING payment stored
// INVARIANT: The database UNIQUE constraint on transaction_id is the
// authoritative duplicate guard; the lookup here only gives a friendlier
// early answer
func ExecuteSubmitPayment(ctx context.Context, input SubmitPaymentInput, deps SubmitPaymentDeps) (paymentDomain.Payment, error) {
	if strings.TrimSpace(input.TransactionID) == "" {
		return paymentDomain.Payment{}, paymentDomain.ErrEmptyTransactionID
	}
	if input.Amount <= 0 {
		return paymentDomain.Payment{}, paymentDomain.ErrInvalidAmount
	}
	if input.IdentityID == "" {
		return paymentDomain.Payment{}, userDomain.ErrEmptyIdentityID
	}

	txnID := strings.TrimSpace(input.TransactionID)

	// Early duplicate answer before touching the user row.
	if _, err := deps.PaymentStore.GetByTransactionID(ctx, txnID); err == nil {
		return paymentDomain.Payment{}, paymentDomain.ErrDuplicateTransaction
	} else if !errors.Is(err, paymentDomain.ErrNotFound) {
		return paymentDomain.Payment{}, fmt.Errorf("check transaction id: %w", err)
	}

	u, err := resolveUser(ctx, input, deps)
	if err != nil {
		return paymentDomain.Payment{}, err
	}

	// One open submission per user.
	if _, err := deps.PaymentStore.GetPendingForUser(ctx, u.ID); err == nil {
		return paymentDomain.Payment{}, paymentDomain.ErrPendingExists
	} else if !errors.Is(err, paymentDomain.ErrNotFound) {
		return paymentDomain.Payment{}, fmt.Errorf("check pending payment: %w", err)
	}

	p := paymentDomain.Payment{
		ID:            deps.Notify.GenerateID(),
		UserID:        u.ID,
		Amount:        input.Amount,
		Status:        paymentDomain.StatusPending,
		Method:        paymentDomain.NormalizeMethod(input.Method),
		TransactionID: txnID,
		CreatedAt:     deps.Notify.Now(),
	}
	if err := p.Validate(); err != nil {
		return paymentDomain.Payment{}, err
	}

	if err := deps.PaymentStore.Create(ctx, p); err != nil {
		return paymentDomain.Payment{}, err
	}

	slog.Info("payment_event", "event", "payment_submitted", "payment_id", p.ID, "user_id", u.ID, "amount", p.Amount, "method", p.Method)

	notifyAdminsOfSubmission(ctx, deps, u, p)

	return p, nil
}

// resolveUser finds the user by identity id, creating or refreshing the
// row on first contact.
func resolveUser(ctx context.Context, input SubmitPaymentInput, deps SubmitPaymentDeps) (userDomain.User, error) {
	u, err := deps.UserStore.GetByIdentityID(ctx, input.IdentityID)
	if errors.Is(err, userDomain.ErrNotFound) {
		u = userDomain.User{
			ID:         deps.Notify.GenerateID(),
			IdentityID: input.IdentityID,
			Email:      input.Email,
			Name:       input.Name,
			Role:       userDomain.RoleStudent,
			CreatedAt:  deps.Notify.Now(),
		}
		if err := u.Validate(); err != nil {
			return userDomain.User{}, err
		}
		if err := deps.UserStore.Save(ctx, u); err != nil {
			return userDomain.User{}, err
		}
		slog.Info("user_event", "event", "user_created", "user_id", u.ID)
		return u, nil
	}
	if err != nil {
		return userDomain.User{}, fmt.Errorf("resolve user: %w", err)
	}

	// Refresh identity-provider fields that may have changed.
	if (input.Email != "" && input.Email != u.Email) || (input.Name != "" && input.Name != u.Name) {
		if input.Email != "" {
			u.Email = input.Email
		}
		if input.Name != "" {
			u.Name = input.Name
		}
		if err := u.Validate(); err != nil {
			return userDomain.User{}, err
		}
		if err := deps.UserStore.Save(ctx, u); err != nil {
			return userDomain.User{}, err
		}
	}
	return u, nil
}

// notifyAdminsOfSubmission sends one broadcast email to all admins.
// Failures are absorbed; the payment is already durable.
func notifyAdminsOfSubmission(ctx context.Context, deps SubmitPaymentDeps, u userDomain.User, p paymentDomain.Payment) {
	admins, err := deps.UserStore.ListByRole(ctx, userDomain.RoleAdmin)
	if err != nil {
		slog.Error("payment_event", "event", "admin_lookup_failed", "payment_id", p.ID, "error", err.Error())
		return
	}

	var to []string
	for _, a := range admins {
		if a.Email != "" {
			to = append(to, a.Email)
		}
	}
	if len(to) == 0 {
		return
	}

	body := fmt.Sprintf(`## New Payment Submission

A payment is waiting for verification.

- **Member:** %s (%s)
- **Amount:** Rs. %s
- **Method:** %s
- **Transaction ID:** %s

Review it from the admin dashboard.`,
		u.DisplayName(), u.Email, paymentDomain.FormatAmount(p.Amount), p.Method, p.TransactionID)

	sendOrEnqueue(ctx, deps.Notify, emailAdapter.SendRequest{
		To:      to,
		From:    deps.FromAddress,
		Subject: "New Payment Submission - Study Hall",
		HTML:    renderMarkdown(body),
	})
}
