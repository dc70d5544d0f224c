package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/riskprofile-backend/internal/config"
	"github.com/stemsi/riskprofile-backend/internal/repository"
)

// OpenStore connects the backend selected by STORAGE_DRIVER. The returned
// func releases it.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.Store, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		pool, err := NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresStore(pool), pool.Close, nil

	case config.StorageDriverSQLite:
		db, err := NewSQLiteDB(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		store, err := repository.NewSQLiteStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("init sqlite schema: %w", err)
		}
		return store, func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
