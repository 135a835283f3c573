package catalog

import (
	"context"
	"sync"
	"time"

	"catalog-sync/feature/catalog/models"
	"catalog-sync/feature/catalog/staging"
	"catalog-sync/feature/catalog/supplier"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunResult summarizes one sync run for callers and the HTTP surface.
type RunResult struct {
	Success             bool    `json:"success"`
	TotalProducts       int     `json:"total_products"`
	StagingID           uint64  `json:"staging_id"`
	SyncStartedAt       string  `json:"sync_started_at"`
	SyncDurationSeconds float64 `json:"sync_duration_seconds"`
	Error               string  `json:"error,omitempty"`
}

// Service runs the catalog sync pipeline end to end: fetch, stage, process,
// reap.
type Service struct {
	db       *gorm.DB
	registry *supplier.Registry
	store    *staging.Store
	orch     *Orchestrator
	reaper   *Reaper
	// itemWorkers bounds how many staging items are processed concurrently.
	// Items run on their own goroutines rather than the task pool: a worker
	// blocked joining its cohort must never starve the cohort's tasks.
	itemWorkers int
	logger      *zap.Logger
}

// NewService wires the sync service.
func NewService(
	db *gorm.DB,
	registry *supplier.Registry,
	store *staging.Store,
	orch *Orchestrator,
	reaper *Reaper,
	itemWorkers int,
	logger *zap.Logger,
) *Service {
	if itemWorkers <= 0 {
		itemWorkers = 1
	}
	return &Service{
		db:          db,
		registry:    registry,
		store:       store,
		orch:        orch,
		reaper:      reaper,
		itemWorkers: itemWorkers,
		logger:      logger,
	}
}

// SyncFromSource runs the full pipeline against a named supplier.
func (s *Service) SyncFromSource(ctx context.Context, source string) (*RunResult, error) {
	fetcher, err := s.registry.Lookup(source)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Sync run starting", zap.String("source", source))
	payload, err := fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	batch, err := s.Stage(ctx, payload)
	if err != nil {
		return nil, err
	}
	return s.ProcessBatch(ctx, batch.ID)
}

// Stage persists one raw payload as a staging batch.
func (s *Service) Stage(ctx context.Context, payload []byte) (*models.StagingBatch, error) {
	return s.store.CreateBatch(ctx, payload)
}

// ProcessBatch processes every pending item of a batch concurrently, with no
// ordering guarantees across items, then reaps outdated products iff the
// batch completed. It always returns the run summary, also for failed runs.
func (s *Service) ProcessBatch(ctx context.Context, batchID uint64) (*RunResult, error) {
	if err := s.store.StartBatch(ctx, batchID); err != nil {
		return nil, err
	}

	items, err := s.store.PendingItems(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		// Nothing left in flight; an empty batch finishes immediately.
		if _, err := s.store.FinishIfComplete(ctx, batchID); err != nil {
			return nil, err
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, s.itemWorkers)
		for _, item := range items {
			item := item
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				// Item errors are terminal on the item and the batch;
				// siblings still run to completion.
				_ = s.orch.ProcessItem(ctx, item)
			}()
		}
		wg.Wait()
	}

	batch, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if batch.Status == models.StatusDone {
		if _, err := s.reaper.Run(ctx, batchID); err != nil {
			s.logger.Error("Reaper failed", zap.Uint64("staging_batch_id", batchID), zap.Error(err))
		}
	}

	result := s.buildResult(ctx, batch)
	s.logger.Info("Sync run finished",
		zap.Uint64("staging_batch_id", batch.ID),
		zap.Bool("success", result.Success),
		zap.Float64("duration_seconds", result.SyncDurationSeconds),
	)
	return result, nil
}

// GetBatch exposes one batch with its items for operator inspection.
func (s *Service) GetBatch(ctx context.Context, batchID uint64) (*models.StagingBatch, error) {
	return s.store.GetBatchWithItems(ctx, batchID)
}

// GetProduct loads one product together with its variations.
func (s *Service) GetProduct(ctx context.Context, productID uint64) (*models.Product, []models.ProductVariation, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		return nil, nil, err
	}
	var variations []models.ProductVariation
	if err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id").
		Find(&variations).Error; err != nil {
		return nil, nil, err
	}
	return &product, variations, nil
}

func (s *Service) buildResult(ctx context.Context, batch *models.StagingBatch) *RunResult {
	result := &RunResult{
		Success:             batch.Status == models.StatusDone,
		TotalProducts:       batch.TotalItems,
		StagingID:           batch.ID,
		SyncDurationSeconds: batch.DurationSeconds,
	}
	if batch.StartedAt != nil {
		result.SyncStartedAt = batch.StartedAt.Format(time.RFC3339)
	}
	if !result.Success {
		result.Error = s.firstItemError(ctx, batch.ID)
	}
	return result
}

// firstItemError surfaces the earliest recorded item failure of a batch.
func (s *Service) firstItemError(ctx context.Context, batchID uint64) string {
	var item models.StagingItem
	err := s.db.WithContext(ctx).
		Where("staging_batch_id = ? AND status = ?", batchID, models.StatusFailed).
		Order("id").
		First(&item).Error
	if err != nil || item.ErrorMessage == nil {
		return "batch failed"
	}
	return *item.ErrorMessage
}
