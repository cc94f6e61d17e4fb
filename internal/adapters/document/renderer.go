package document

import (
	"context"
	"time"
)

// Invoice holds the data rendered onto a payment invoice.
// Amounts are in paise; the renderer formats them as rupees.
type Invoice struct {
	Number        string // e.g. "INV-2026-4821"
	IssuedAt      time.Time
	CustomerName  string
	CustomerEmail string
	Description   string
	Amount        int64  // paise
	Method        string // payment method label
	TransactionID string
	PeriodStart   time.Time
	PeriodEnd     time.Time
}

// Renderer produces a printable invoice document.
type Renderer interface {
	RenderInvoice(ctx context.Context, inv Invoice) ([]byte, error)
}
