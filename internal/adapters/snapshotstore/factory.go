package snapshotstore

import (
	"fmt"

	"github.com/bahnwerk/core/internal/infrastructure/config"
	"github.com/bahnwerk/core/internal/infrastructure/database"
	"github.com/bahnwerk/core/internal/ports"
)

// New builds the snapshot store selected by the configuration. The postgres
// driver opens its own connection and owns it until Close.
func New(cfg config.Config) (ports.SnapshotStore, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverFile:
		return NewFileStore(cfg.Store.Path)
	case config.StoreDriverPostgres:
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect snapshot database: %w", err)
		}
		return NewPostgresStore(db.DB), nil
	case config.StoreDriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
