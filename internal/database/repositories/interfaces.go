package repositories

import (
	"context"

	"github.com/frostdev-ops/dashview-backend-go/internal/database/models"
)

// HouseConfigRepository defines panel configuration data access
type HouseConfigRepository interface {
	Get(ctx context.Context) (*models.HouseConfigRecord, error)
	Save(ctx context.Context, payload string) error
}

// KVRepository defines key-value data access. Get returns "" for a missing
// key, not an error.
type KVRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
