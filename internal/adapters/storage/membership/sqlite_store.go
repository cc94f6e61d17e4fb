package membership

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studyhall/internal/adapters/storage"
	domain "studyhall/internal/domain/membership"
)

const membershipColumns = "id, user_id, status, start_date, expiry_date"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MembershipStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// scanMembership scans a membership row, handling the nullable dates.
func scanMembership(scan func(dest ...any) error) (domain.Membership, error) {
	var entity domain.Membership
	var start, expiry sql.NullString
	err := scan(
		&entity.ID,
		&entity.UserID,
		&entity.Status,
		&start,
		&expiry,
	)
	if err != nil {
		return domain.Membership{}, err
	}
	entity.StartDate = parseDate(start)
	entity.ExpiryDate = parseDate(expiry)
	return entity, nil
}

func parseDate(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// GetByUserID retrieves the Membership owned by a user.
// PRE: userID is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByUserID(ctx context.Context, userID string) (domain.Membership, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+membershipColumns+" FROM membership WHERE user_id = ?", userID)
	entity, err := scanMembership(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Membership{}, domain.ErrNotFound
	}
	return entity, err
}

// Upsert persists a Membership keyed by the owning user.
// PRE: entity has been validated
// POST: Exactly one row exists for entity.UserID with the given state
func (s *SQLiteStore) Upsert(ctx context.Context, entity domain.Membership) error {
	query := `INSERT INTO membership (id, user_id, status, start_date, expiry_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			status=excluded.status,
			start_date=excluded.start_date,
			expiry_date=excluded.expiry_date`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.UserID,
		entity.Status,
		formatDate(entity.StartDate),
		formatDate(entity.ExpiryDate),
	)
	if err != nil {
		return fmt.Errorf("upsert membership: %w", err)
	}
	return nil
}

// ListByStatus retrieves all Memberships with the given status. The
// filter is by status alone; callers that need effective-active must
// apply the expiry predicate themselves.
func (s *SQLiteStore) ListByStatus(ctx context.Context, status string) ([]domain.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+membershipColumns+" FROM membership WHERE status = ?", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMemberships(rows)
}

// ListAll retrieves every Membership row.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Membership, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+membershipColumns+" FROM membership")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMemberships(rows)
}

func collectMemberships(rows *sql.Rows) ([]domain.Membership, error) {
	var results []domain.Membership
	for rows.Next() {
		entity, err := scanMembership(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
