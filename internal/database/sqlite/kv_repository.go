package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/frostdev-ops/dashview-backend-go/internal/database/repositories"
)

// KVRepository implements repositories.KVRepository
type KVRepository struct {
	db *sql.DB
}

// NewKVRepository creates a new KVRepository
func NewKVRepository(db *sql.DB) repositories.KVRepository {
	return &KVRepository{db: db}
}

// Get retrieves a value by key; a missing key yields ""
func (r *KVRepository) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM kv_store WHERE key = ?`

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, nil
}

// Set creates or updates a key
func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes a key; deleting a missing key is not an error
func (r *KVRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
