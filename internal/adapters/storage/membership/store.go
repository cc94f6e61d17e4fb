package membership

import (
	"context"

	domain "studyhall/internal/domain/membership"
)

// Store persists Membership state. Upsert is keyed by the owning user:
// one membership per user, enforced by the unique constraint.
type Store interface {
	GetByUserID(ctx context.Context, userID string) (domain.Membership, error)
	Upsert(ctx context.Context, value domain.Membership) error
	ListByStatus(ctx context.Context, status string) ([]domain.Membership, error)
	ListAll(ctx context.Context) ([]domain.Membership, error)
}
