package payment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"studyhall/internal/adapters/storage"
	domain "studyhall/internal/domain/payment"
)

const paymentColumns = "id, user_id, amount, status, method, transaction_id, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new PaymentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// scanPayment scans a payment row from any row-scanner.
func scanPayment(scan func(dest ...any) error) (domain.Payment, error) {
	var entity domain.Payment
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.UserID,
		&entity.Amount,
		&entity.Status,
		&entity.Method,
		&entity.TransactionID,
		&createdAt,
	)
	if err != nil {
		return domain.Payment{}, err
	}
	if t, perr := time.Parse(time.RFC3339, createdAt); perr == nil {
		entity.CreatedAt = t
	}
	return entity, nil
}

// GetByID retrieves a Payment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payment WHERE id = ?", id)
	entity, err := scanPayment(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Payment{}, domain.ErrNotFound
	}
	return entity, err
}

// GetByTransactionID retrieves a Payment by its transaction id.
// PRE: transactionID is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByTransactionID(ctx context.Context, transactionID string) (domain.Payment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payment WHERE transaction_id = ?", transactionID)
	entity, err := scanPayment(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Payment{}, domain.ErrNotFound
	}
	return entity, err
}

// GetPendingForUser retrieves the user's PENDING payment, if any.
// PRE: userID is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetPendingForUser(ctx context.Context, userID string) (domain.Payment, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payment WHERE user_id = ? AND status = ? LIMIT 1",
		userID, domain.StatusPending)
	entity, err := scanPayment(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Payment{}, domain.ErrNotFound
	}
	return entity, err
}

// Create inserts a new Payment. The UNIQUE constraint on transaction_id
// is the authoritative duplicate guard; a violation is surfaced as
// domain.ErrDuplicateTransaction.
// PRE: entity has been validated
// POST: Entity is persisted, or ErrDuplicateTransaction on id reuse
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Payment) error {
	query := "INSERT INTO payment (" + paymentColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.UserID,
		entity.Amount,
		entity.Status,
		entity.Method,
		entity.TransactionID,
		entity.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		// modernc.org/sqlite reports constraint violations by message,
		// not by a typed error value.
		if strings.Contains(err.Error(), "UNIQUE constraint failed: payment.transaction_id") {
			return domain.ErrDuplicateTransaction
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// UpdateStatus sets the status of a Payment.
// PRE: id is non-empty, status is a valid status constant
// POST: Status updated, or domain.ErrNotFound for an unknown id
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE payment SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUser retrieves all Payments for a user, newest first.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payment WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

// ListByStatus retrieves all Payments with the given status, oldest first
// so the admin queue shows submissions in arrival order.
func (s *SQLiteStore) ListByStatus(ctx context.Context, status string) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payment WHERE status = ? ORDER BY created_at ASC", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func collectPayments(rows *sql.Rows) ([]domain.Payment, error) {
	var results []domain.Payment
	for rows.Next() {
		entity, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
