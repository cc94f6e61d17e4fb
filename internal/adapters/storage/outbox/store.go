package outbox

import (
	"context"

	domain "studyhall/internal/domain/outbox"
)

// Store persists outbox entries.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, value domain.Entry) error
	// ListPending returns entries still awaiting delivery (pending,
	// retrying, or failed-but-retryable), oldest first.
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
	// List returns the most recent entries regardless of state, for
	// the admin view.
	List(ctx context.Context, limit int) ([]domain.Entry, error)
}
