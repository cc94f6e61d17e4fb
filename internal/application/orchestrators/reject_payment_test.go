package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	paymentDomain "studyhall/internal/domain/payment"
	userDomain "studyhall/internal/domain/user"
)

func newRejectDeps(sender *mockSender) (RejectPaymentDeps, *mockUserStore, *mockPaymentStore, *mockMembershipStore) {
	users := newMockUserStore()
	payments := newMockPaymentStore()
	memberships := newMockMembershipStore()

	users.users["u-1"] = userDomain.User{ID: "u-1", IdentityID: "idn-1", Email: "member@test.com", Name: "Asha", Role: userDomain.RoleStudent, CreatedAt: fixedNow}
	payments.payments["p-1"] = paymentDomain.Payment{
		ID: "p-1", UserID: "u-1", Amount: 99900,
		Status: paymentDomain.StatusPending, Method: paymentDomain.MethodUPIManual,
		TransactionID: "txn-1", CreatedAt: fixedNow,
	}

	deps := RejectPaymentDeps{
		UserStore:    users,
		PaymentStore: payments,
		Notify:       newTestNotify(sender, newMockOutboxStore()),
		FromAddress:  "Study Hall <noreply@studyhall.test>",
	}
	return deps, users, payments, memberships
}

func TestExecuteRejectPayment_MarksFailed(t *testing.T) {
	sender := &mockSender{}
	deps, _, payments, memberships := newRejectDeps(sender)

	p, err := ExecuteRejectPayment(context.Background(), RejectPaymentInput{PaymentID: "p-1"}, deps)
	if err != nil {
		t.Fatalf("ExecuteRejectPayment failed: %v", err)
	}

	if p.Status != paymentDomain.StatusFailed {
		t.Errorf("status = %q, want FAILED", p.Status)
	}
	if got := payments.payments["p-1"].Status; got != paymentDomain.StatusFailed {
		t.Errorf("stored status = %q, want FAILED", got)
	}

	// No membership side effect.
	if len(memberships.memberships) != 0 {
		t.Error("rejection must not touch memberships")
	}

	// Rejection email carries the transaction id.
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].HTML, "txn-1") {
		t.Error("rejection email missing transaction id")
	}
	if sender.sent[0].Subject != "Payment Verification Failed - Study Hall" {
		t.Errorf("subject = %q", sender.sent[0].Subject)
	}
}

func TestExecuteRejectPayment_TerminalRejected(t *testing.T) {
	deps, _, payments, _ := newRejectDeps(&mockSender{})
	p := payments.payments["p-1"]
	p.Status = paymentDomain.StatusSuccess
	payments.payments["p-1"] = p

	_, err := ExecuteRejectPayment(context.Background(), RejectPaymentInput{PaymentID: "p-1"}, deps)
	if !errors.Is(err, paymentDomain.ErrNotPending) {
		t.Errorf("err = %v, want ErrNotPending", err)
	}
}

func TestExecuteRejectPayment_UnknownPayment(t *testing.T) {
	deps, _, _, _ := newRejectDeps(&mockSender{})

	_, err := ExecuteRejectPayment(context.Background(), RejectPaymentInput{PaymentID: "nope"}, deps)
	if !errors.Is(err, paymentDomain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestExecuteRejectPayment_SendFailureAbsorbed(t *testing.T) {
	sender := &mockSender{failAll: true}
	deps, _, payments, _ := newRejectDeps(sender)

	p, err := ExecuteRejectPayment(context.Background(), RejectPaymentInput{PaymentID: "p-1"}, deps)
	if err != nil {
		t.Fatalf("rejection must survive a send failure: %v", err)
	}
	if p.Status != paymentDomain.StatusFailed {
		t.Errorf("status = %q, want FAILED", p.Status)
	}
	if got := payments.payments["p-1"].Status; got != paymentDomain.StatusFailed {
		t.Errorf("stored status = %q, want FAILED", got)
	}
}
