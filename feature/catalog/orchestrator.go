package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-sync/core/queue"
	"catalog-sync/feature/catalog/models"
	"catalog-sync/feature/catalog/normalizer"
	"catalog-sync/feature/catalog/relsync"
	"catalog-sync/feature/catalog/staging"
	"catalog-sync/feature/catalog/tasks"

	"go.uber.org/zap"
)

// Orchestrator drives one staging item through the pipeline: normalization,
// the downstream task cohort, and finally the relational sync. Nothing is
// persisted for an item until every task in its cohort has succeeded.
type Orchestrator struct {
	store       *staging.Store
	engine      *relsync.Engine
	pool        *queue.Pool
	tasks       []tasks.Task
	taskTimeout time.Duration
	logger      *zap.Logger
}

// NewOrchestrator wires the orchestrator. taskTimeout bounds each downstream
// task individually; a non-positive value disables the per-task deadline.
func NewOrchestrator(
	store *staging.Store,
	engine *relsync.Engine,
	pool *queue.Pool,
	cohort []tasks.Task,
	taskTimeout time.Duration,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:       store,
		engine:      engine,
		pool:        pool,
		tasks:       cohort,
		taskTimeout: taskTimeout,
		logger:      logger,
	}
}

// ProcessItem processes one staging item to a terminal status. Item failures
// never abort sibling items, but any failure marks the whole batch failed.
func (o *Orchestrator) ProcessItem(ctx context.Context, item models.StagingItem) error {
	if err := o.store.MarkItemProcessing(ctx, item.ID); err != nil {
		return err
	}

	product, err := o.processItem(ctx, item)
	if err != nil {
		o.logger.Error("Staging item failed",
			zap.Uint64("staging_batch_id", item.StagingBatchID),
			zap.Uint64("staging_item_id", item.ID),
			zap.Error(err),
		)
		if markErr := o.store.MarkItemFailed(ctx, item.ID, err.Error()); markErr != nil {
			o.logger.Error("Failed to mark item failed", zap.Error(markErr))
		}
		if failErr := o.store.FailBatch(ctx, item.StagingBatchID); failErr != nil {
			o.logger.Error("Failed to mark batch failed", zap.Error(failErr))
		}
		return err
	}

	if err := o.store.MarkItemDone(ctx, item.ID, product.ID); err != nil {
		return err
	}
	if _, err := o.store.CompleteItem(ctx, item.StagingBatchID); err != nil {
		return err
	}

	o.logger.Info("Staging item done",
		zap.Uint64("staging_batch_id", item.StagingBatchID),
		zap.Uint64("staging_item_id", item.ID),
		zap.Uint64("product_id", product.ID),
	)
	return nil
}

// processItem performs the fallible part of the pipeline and returns the
// canonical product on success.
func (o *Orchestrator) processItem(ctx context.Context, item models.StagingItem) (*models.CanonicalProduct, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(item.RawProduct), &raw); err != nil {
		return nil, fmt.Errorf("raw record is not a JSON object: %w", err)
	}

	product, err := normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}

	// Fan the downstream tasks out onto the pool and join. A per-task
	// timeout counts as that task failing.
	cohort := queue.NewCohort(o.pool)
	for _, task := range o.tasks {
		task := task
		cohort.Go(o.taskTimeout, func(taskCtx context.Context) error {
			return task.Run(taskCtx, product)
		})
	}
	if err := cohort.Wait(); err != nil {
		return nil, err
	}

	// Only a fully confirmed product reaches the relational schema. The
	// engine upserts the row and its graph in one transaction, stamping
	// last_batch_id so the reaper can tell survivors from leftovers.
	row := &models.Product{
		ID:          product.ID,
		Name:        product.Name,
		SKU:         product.SKU,
		Price:       product.Price,
		Status:      product.Status,
		LastBatchID: &item.StagingBatchID,
	}
	if err := o.engine.Sync(ctx, row, product.Variations, product.Warehouses); err != nil {
		return nil, err
	}
	return product, nil
}
