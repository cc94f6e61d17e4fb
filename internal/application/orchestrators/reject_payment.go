package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	emailAdapter "studyhall/internal/adapters/email"
	paymentDomain "studyhall/internal/domain/payment"
)

// RejectPaymentInput carries input for the rejection orchestrator.
type RejectPaymentInput struct {
	PaymentID string
}

// RejectPaymentDeps holds dependencies for RejectPayment.
type RejectPaymentDeps struct {
	UserStore    UserStore
	PaymentStore PaymentStore
	Notify       NotifyDeps
	FromAddress  string
}

// ExecuteRejectPayment marks a pending payment as FAILED.
// PRE: Payment exists and is PENDING
// POST: Payment is FAILED; membership untouched; no invoice
func ExecuteRejectPayment(ctx context.Context, input RejectPaymentInput, deps RejectPaymentDeps) (paymentDomain.Payment, error) {
	p, err := deps.PaymentStore.GetByID(ctx, input.PaymentID)
	if err != nil {
		return paymentDomain.Payment{}, err
	}

	if err := p.Reject(); err != nil {
		return paymentDomain.Payment{}, err
	}
	if err := deps.PaymentStore.UpdateStatus(ctx, p.ID, p.Status); err != nil {
		return paymentDomain.Payment{}, err
	}

	slog.Info("payment_event", "event", "payment_rejected", "payment_id", p.ID, "user_id", p.UserID, "transaction_id", p.TransactionID)

	u, err := deps.UserStore.GetByID(ctx, p.UserID)
	if err != nil || u.Email == "" {
		if err != nil {
			slog.Error("payment_event", "event", "rejection_user_lookup_failed", "payment_id", p.ID, "error", err.Error())
		}
		return p, nil
	}

	body := fmt.Sprintf(`Hi %s,

We could not verify your payment with transaction ID **%s**.

Please check the details and submit again, or contact us if you believe
this is a mistake.`, u.DisplayName(), p.TransactionID)

	sendOrEnqueue(ctx, deps.Notify, emailAdapter.SendRequest{
		To:      []string{u.Email},
		From:    deps.FromAddress,
		Subject: "Payment Verification Failed - Study Hall",
		HTML:    renderMarkdown(body),
	})

	return p, nil
}
