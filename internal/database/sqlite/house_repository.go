package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/frostdev-ops/dashview-backend-go/internal/database/models"
	"github.com/frostdev-ops/dashview-backend-go/internal/database/repositories"
)

// HouseConfigRepository implements repositories.HouseConfigRepository
type HouseConfigRepository struct {
	db *sql.DB
}

// NewHouseConfigRepository creates a new HouseConfigRepository
func NewHouseConfigRepository(db *sql.DB) repositories.HouseConfigRepository {
	return &HouseConfigRepository{db: db}
}

// Get retrieves the current configuration document
func (r *HouseConfigRepository) Get(ctx context.Context) (*models.HouseConfigRecord, error) {
	query := `
		SELECT id, payload, updated_at
		FROM house_config
		WHERE id = 1
	`

	record := &models.HouseConfigRecord{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&record.ID,
		&record.Payload,
		&record.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("house configuration not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get house configuration: %w", err)
	}

	return record, nil
}

// Save replaces the configuration document wholesale
func (r *HouseConfigRepository) Save(ctx context.Context, payload string) error {
	query := `
		INSERT INTO house_config (id, payload, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, payload, time.Now()); err != nil {
		return fmt.Errorf("failed to save house configuration: %w", err)
	}
	return nil
}
