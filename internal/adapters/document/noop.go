package document

import (
	"context"
	"fmt"
	"log/slog"

	"studyhall/internal/domain/payment"
)

// NoopRenderer emits a plain-text rendition of the invoice. Used in
// development and tests where a real PDF is not needed.
type NoopRenderer struct{}

// NewNoopRenderer creates a new NoopRenderer.
func NewNoopRenderer() *NoopRenderer {
	return &NoopRenderer{}
}

// RenderInvoice returns a plain-text summary of the invoice.
func (r *NoopRenderer) RenderInvoice(_ context.Context, inv Invoice) ([]byte, error) {
	slog.Info("noop_invoice_render", "invoice", inv.Number, "customer", inv.CustomerName)
	text := fmt.Sprintf("Invoice %s\n%s\nAmount: Rs. %s\nTransaction: %s\n",
		inv.Number, inv.CustomerName, payment.FormatAmount(inv.Amount), inv.TransactionID)
	return []byte(text), nil
}
