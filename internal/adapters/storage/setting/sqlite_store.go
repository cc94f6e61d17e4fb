package setting

import (
	"context"
	"database/sql"
	"fmt"

	"studyhall/internal/adapters/storage"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SettingStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves a setting value by key.
// PRE: key is non-empty
// POST: Returns the value, or empty string when the key is unset
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM setting WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

// Upsert writes a setting value, creating the key if needed.
// PRE: key and value have been validated
// POST: setting row holds the new value
func (s *SQLiteStore) Upsert(ctx context.Context, key, value string) error {
	query := `INSERT INTO setting (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("upsert setting %q: %w", key, err)
	}
	return nil
}
