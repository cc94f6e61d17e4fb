package payment

import (
	"context"

	domain "studyhall/internal/domain/payment"
)

// Store persists Payment state. Create enforces the global
// transaction-id uniqueness through the database constraint; it is the
// authoritative guard, not the application-level pre-check.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (domain.Payment, error)
	GetPendingForUser(ctx context.Context, userID string) (domain.Payment, error)
	Create(ctx context.Context, value domain.Payment) error
	UpdateStatus(ctx context.Context, id string, status string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Payment, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Payment, error)
}
