package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"studyhall/internal/adapters/document"
	emailAdapter "studyhall/internal/adapters/email"
	membershipDomain "studyhall/internal/domain/membership"
	paymentDomain "studyhall/internal/domain/payment"
	settingDomain "studyhall/internal/domain/setting"
)

// MembershipStore defines the membership persistence surface needed by orchestrators.
type MembershipStore interface {
	GetByUserID(ctx context.Context, userID string) (membershipDomain.Membership, error)
	Upsert(ctx context.Context, m membershipDomain.Membership) error
	ListByStatus(ctx context.Context, status string) ([]membershipDomain.Membership, error)
	ListAll(ctx context.Context) ([]membershipDomain.Membership, error)
}

// SettingStore defines the setting persistence surface needed by orchestrators.
type SettingStore interface {
	Get(ctx context.Context, key string) (string, error)
	Upsert(ctx context.Context, key, value string) error
}

// NewInvoiceNumber generates an invoice reference of the form
// INV-<year>-<4 digits>.
func NewInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%d-%04d", now.Year(), rand.Intn(10000))
}

// ApprovePaymentInput carries input for the approval orchestrator.
type ApprovePaymentInput struct {
	PaymentID string
}

// ApprovePaymentDeps holds dependencies for ApprovePayment.
type ApprovePaymentDeps struct {
	UserStore       UserStore
	PaymentStore    PaymentStore
	MembershipStore MembershipStore
	SettingStore    SettingStore
	Renderer        document.Renderer
	Notify          NotifyDeps
	FromAddress     string
	InvoiceNumber   func(now time.Time) string // defaults to NewInvoiceNumber
}

// ApprovePaymentResult reports what the approval produced.
type ApprovePaymentResult struct {
	Payment    paymentDomain.Payment
	Membership membershipDomain.Membership
	InvoiceNo  string
}

// ExecuteApprovePayment confirms a pending payment and opens a fresh
// membership window.
// PRE: Payment exists and is PENDING
// POST: Payment is SUCCESS; membership ACTIVE with start=now,
// expiry=now+30d, overwriting any prior window
// INVARIANT: now is sampled once; start and expiry derive from the same
// instant. Notification and rendering failures never undo the approval.
func ExecuteApprovePayment(ctx context.Context, input ApprovePaymentInput, deps ApprovePaymentDeps) (ApprovePaymentResult, error) {
	p, err := deps.PaymentStore.GetByID(ctx, input.PaymentID)
	if err != nil {
		return ApprovePaymentResult{}, err
	}

	if err := p.Approve(); err != nil {
		return ApprovePaymentResult{}, err
	}
	if err := deps.PaymentStore.UpdateStatus(ctx, p.ID, p.Status); err != nil {
		return ApprovePaymentResult{}, err
	}

	now := deps.Notify.Now()

	m, err := deps.MembershipStore.GetByUserID(ctx, p.UserID)
	if errors.Is(err, membershipDomain.ErrNotFound) {
		m = membershipDomain.Membership{
			ID:     deps.Notify.GenerateID(),
			UserID: p.UserID,
		}
	} else if err != nil {
		return ApprovePaymentResult{}, fmt.Errorf("load membership: %w", err)
	}

	m.ActivateFreshWindow(now)
	if err := deps.MembershipStore.Upsert(ctx, m); err != nil {
		return ApprovePaymentResult{}, err
	}

	slog.Info("payment_event", "event", "payment_approved", "payment_id", p.ID, "user_id", p.UserID, "expiry", m.ExpiryDate.Format(time.RFC3339))

	u, err := deps.UserStore.GetByID(ctx, p.UserID)
	if err != nil {
		// Approval is durable; without the user row there is nobody to mail.
		slog.Error("payment_event", "event", "approval_user_lookup_failed", "payment_id", p.ID, "error", err.Error())
		return ApprovePaymentResult{Payment: p, Membership: m}, nil
	}

	secret, err := deps.SettingStore.Get(ctx, settingDomain.KeyWiFiPassword)
	if err != nil {
		slog.Warn("payment_event", "event", "secret_read_failed", "error", err.Error())
		secret = ""
	}

	numberFor := deps.InvoiceNumber
	if numberFor == nil {
		numberFor = NewInvoiceNumber
	}
	invoiceNo := numberFor(now)

	sendApprovalEmail(ctx, deps, u.Email, u.DisplayName(), m, secret)
	sendInvoiceEmail(ctx, deps, u.Email, u.DisplayName(), u.Email, p, m, invoiceNo)

	return ApprovePaymentResult{Payment: p, Membership: m, InvoiceNo: invoiceNo}, nil
}

func sendApprovalEmail(ctx context.Context, deps ApprovePaymentDeps, to, name string, m membershipDomain.Membership, secret string) {
	if to == "" {
		return
	}

	body := fmt.Sprintf(`## Membership Approved

Hi %s,

Your payment has been verified and your membership is now active.

- **Valid from:** %s
- **Valid until:** %s`,
		name, m.StartDate.Format("02 Jan 2006"), m.ExpiryDate.Format("02 Jan 2006"))

	if secret != "" {
		body += fmt.Sprintf("\n\nWiFi password: **%s**", secret)
	}
	body += "\n\nSee you at the study hall!"

	sendOrEnqueue(ctx, deps.Notify, emailAdapter.SendRequest{
		To:      []string{to},
		From:    deps.FromAddress,
		Subject: "Membership Approved - Study Hall",
		HTML:    renderMarkdown(body),
	})
}

func sendInvoiceEmail(ctx context.Context, deps ApprovePaymentDeps, to, name, email string, p paymentDomain.Payment, m membershipDomain.Membership, invoiceNo string) {
	if to == "" || deps.Renderer == nil {
		return
	}

	pdf, err := deps.Renderer.RenderInvoice(ctx, document.Invoice{
		Number:        invoiceNo,
		IssuedAt:      deps.Notify.Now(),
		CustomerName:  name,
		CustomerEmail: email,
		Amount:        p.Amount,
		Method:        p.Method,
		TransactionID: p.TransactionID,
		PeriodStart:   *m.StartDate,
		PeriodEnd:     *m.ExpiryDate,
	})
	if err != nil {
		// The approval email already went out; skip the invoice rather
		// than failing the operation.
		slog.Error("payment_event", "event", "invoice_render_failed", "payment_id", p.ID, "error", err.Error())
		return
	}

	body := fmt.Sprintf(`Hi %s,

Your invoice **%s** for this billing period is attached.

Thank you for your payment.`, name, invoiceNo)

	sendOrEnqueue(ctx, deps.Notify, emailAdapter.SendRequest{
		To:      []string{to},
		From:    deps.FromAddress,
		Subject: fmt.Sprintf("Invoice %s - Study Hall", invoiceNo),
		HTML:    renderMarkdown(body),
		Attachments: []emailAdapter.Attachment{{
			Filename:    invoiceNo + ".pdf",
			Content:     pdf,
			ContentType: "application/pdf",
		}},
	})
}
