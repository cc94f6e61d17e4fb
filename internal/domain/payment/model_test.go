package payment_test

import (
	"errors"
	"testing"

	"studyhall/internal/domain/payment"
)

// TestPaymentValidation tests validation of Payment.
func TestPaymentValidation(t *testing.T) {
	tests := []struct {
		name    string
		payment payment.Payment
		wantErr bool
	}{
		{
			name: "valid pending payment",
			payment: payment.Payment{
				ID:            "p1",
				UserID:        "u1",
				Amount:        50000,
				Status:        payment.StatusPending,
				Method:        payment.MethodUPIManual,
				TransactionID: "TXN1",
			},
			wantErr: false,
		},
		{
			name: "empty transaction id",
			payment: payment.Payment{
				ID:     "p1",
				UserID: "u1",
				Amount: 50000,
				Status: payment.StatusPending,
			},
			wantErr: true,
		},
		{
			name: "whitespace transaction id",
			payment: payment.Payment{
				ID:            "p1",
				UserID:        "u1",
				Amount:        50000,
				Status:        payment.StatusPending,
				TransactionID: "   ",
			},
			wantErr: true,
		},
		{
			name: "zero amount",
			payment: payment.Payment{
				ID:            "p1",
				UserID:        "u1",
				Amount:        0,
				Status:        payment.StatusPending,
				TransactionID: "TXN1",
			},
			wantErr: true,
		},
		{
			name: "missing user",
			payment: payment.Payment{
				ID:            "p1",
				Amount:        50000,
				Status:        payment.StatusPending,
				TransactionID: "TXN1",
			},
			wantErr: true,
		},
		{
			name: "invalid status",
			payment: payment.Payment{
				ID:            "p1",
				UserID:        "u1",
				Amount:        50000,
				Status:        "SETTLED",
				TransactionID: "TXN1",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payment.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Payment.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestPaymentApprove tests the Approve transition.
func TestPaymentApprove(t *testing.T) {
	t.Run("approve pending payment", func(t *testing.T) {
		p := payment.Payment{Status: payment.StatusPending}
		if err := p.Approve(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Status != payment.StatusSuccess {
			t.Errorf("expected status SUCCESS, got %s", p.Status)
		}
	})

	t.Run("approve already successful payment", func(t *testing.T) {
		p := payment.Payment{Status: payment.StatusSuccess}
		if err := p.Approve(); !errors.Is(err, payment.ErrNotPending) {
			t.Errorf("expected ErrNotPending, got %v", err)
		}
	})

	t.Run("approve failed payment", func(t *testing.T) {
		p := payment.Payment{Status: payment.StatusFailed}
		if err := p.Approve(); !errors.Is(err, payment.ErrNotPending) {
			t.Errorf("expected ErrNotPending, got %v", err)
		}
		if p.Status != payment.StatusFailed {
			t.Errorf("terminal status mutated to %s", p.Status)
		}
	})
}

// TestPaymentReject tests the Reject transition.
func TestPaymentReject(t *testing.T) {
	t.Run("reject pending payment", func(t *testing.T) {
		p := payment.Payment{Status: payment.StatusPending}
		if err := p.Reject(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Status != payment.StatusFailed {
			t.Errorf("expected status FAILED, got %s", p.Status)
		}
	})

	t.Run("reject terminal payment", func(t *testing.T) {
		p := payment.Payment{Status: payment.StatusSuccess}
		if err := p.Reject(); !errors.Is(err, payment.ErrNotPending) {
			t.Errorf("expected ErrNotPending, got %v", err)
		}
	})
}

// TestPaymentIsTerminal tests terminal state detection.
func TestPaymentIsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{"pending", payment.StatusPending, false},
		{"success", payment.StatusSuccess, true},
		{"failed", payment.StatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := payment.Payment{Status: tt.status}
			if got := p.IsTerminal(); got != tt.want {
				t.Errorf("Payment.IsTerminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestNormalizeMethod tests method tag normalization.
func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", payment.MethodUPIManual},
		{"UPI_MANUAL", payment.MethodUPIManual},
		{"upi_manual", payment.MethodUPIManual},
		{"CASH", payment.MethodCash},
		{" cash ", payment.MethodCash},
		{"BANK_TRANSFER", payment.MethodOther},
	}

	for _, tt := range tests {
		if got := payment.NormalizeMethod(tt.in); got != tt.want {
			t.Errorf("NormalizeMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestFormatAmount tests paise-to-rupee rendering.
func TestFormatAmount(t *testing.T) {
	tests := []struct {
		paise int64
		want  string
	}{
		{50000, "500"},
		{50050, "500.50"},
		{99, "0.99"},
	}

	for _, tt := range tests {
		if got := payment.FormatAmount(tt.paise); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.paise, got, tt.want)
		}
	}
}
