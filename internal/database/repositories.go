package database

import (
	"database/sql"

	"github.com/frostdev-ops/dashview-backend-go/internal/database/repositories"
	"github.com/frostdev-ops/dashview-backend-go/internal/database/sqlite"
)

// Repositories holds all repository instances
type Repositories struct {
	HouseConfig repositories.HouseConfigRepository
	KV          repositories.KVRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		HouseConfig: sqlite.NewHouseConfigRepository(db),
		KV:          sqlite.NewKVRepository(db),
	}
}
