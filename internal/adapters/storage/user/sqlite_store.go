package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studyhall/internal/adapters/storage"
	domain "studyhall/internal/domain/user"
)

const userColumns = "id, identity_id, email, name, role, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new UserStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// scanUser scans a user row from any row-scanner.
func scanUser(scan func(dest ...any) error) (domain.User, error) {
	var entity domain.User
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.IdentityID,
		&entity.Email,
		&entity.Name,
		&entity.Role,
		&createdAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	if t, perr := time.Parse(time.RFC3339, createdAt); perr == nil {
		entity.CreatedAt = t
	}
	return entity, nil
}

// GetByID retrieves a User by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM user WHERE id = ?", id)
	entity, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	return entity, err
}

// GetByIdentityID retrieves a User by its external identity id.
// PRE: identityID is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByIdentityID(ctx context.Context, identityID string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM user WHERE identity_id = ?", identityID)
	entity, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	return entity, err
}

// GetByEmail retrieves a User by email.
// PRE: email is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM user WHERE email = ?", email)
	entity, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	return entity, err
}

// Save persists a User to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert, or update keyed by identity_id)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.User) error {
	query := `INSERT INTO user (id, identity_id, email, name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity_id) DO UPDATE SET
			email=excluded.email,
			name=excluded.name,
			role=excluded.role`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.IdentityID,
		entity.Email,
		entity.Name,
		entity.Role,
		entity.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Delete removes a User. Owned payments and membership cascade with it.
// PRE: id is non-empty
// POST: User and dependent rows are removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM user WHERE id = ?", id)
	return err
}

// List retrieves Users matching the filter, ordered by creation time.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.User, error) {
	query := "SELECT " + userColumns + " FROM user WHERE 1=1"
	var args []any
	if filter.Role != "" {
		query += " AND role = ?"
		args = append(args, filter.Role)
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.User
	for rows.Next() {
		entity, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListByRole retrieves all Users with the given role.
// PRE: role is a valid role constant
// POST: Returns matching users (possibly empty)
func (s *SQLiteStore) ListByRole(ctx context.Context, role string) ([]domain.User, error) {
	return s.List(ctx, ListFilter{Role: role})
}
