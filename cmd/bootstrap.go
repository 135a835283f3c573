package cmd

import (
	"context"
	"fmt"
	"time"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/queue"
	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog"
	"catalog-sync/feature/catalog/supplier"
	"catalog-sync/feature/catalog/tasks"

	"go.uber.org/zap"
)

// buildCatalog wires the catalog feature from configuration: database, the
// optional payload archive, the task pool and the supplier registry. The
// returned pool is already started; callers own stopping it.
func buildCatalog(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*catalog.Feature, *queue.Pool, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	var archive storage.Client
	if cfg.Storage.Enabled {
		archive, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, nil, fmt.Errorf("storage client failed: %w", err)
		}
		logg.Info("Payload archiving enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	pool := queue.NewPool(cfg.Queue, logg)
	pool.Start(ctx)

	registry := supplier.NewRegistry()
	registry.Register(supplier.NewMockSupplier())
	if cfg.Supplier.URL != "" {
		timeout := time.Duration(cfg.Supplier.TimeoutSeconds) * time.Second
		registry.Register(supplier.NewHTTPSupplier("http", cfg.Supplier.URL, timeout, logg))
	}
	logg.Info("Suppliers registered", zap.Strings("sources", registry.Names()))

	feature := catalog.NewFeature(catalog.Deps{
		DB:          db,
		Archive:     archive,
		Bucket:      cfg.Storage.Bucket,
		Pool:        pool,
		Registry:    registry,
		Tasks:       tasks.Defaults(cfg.Tasks, logg),
		TaskTimeout: time.Duration(cfg.Queue.TaskTimeoutSeconds) * time.Second,
		ItemWorkers: cfg.Queue.Workers,
		Logger:      logg,
	})
	return feature, pool, nil
}
