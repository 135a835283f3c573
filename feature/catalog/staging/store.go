package staging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxErrorMessage bounds the error text stored on a failed item.
const maxErrorMessage = 1024

var terminalStatuses = []string{models.StatusDone, models.StatusFailed}

// Store is the durable record of sync runs and their items. It also acts as
// the progress tracker, aggregating item completions into batch status.
// The optional archive client mirrors raw payloads to object storage.
type Store struct {
	db      *gorm.DB
	archive storage.Client
	bucket  string
	logger  *zap.Logger
}

// NewStore creates a staging store. A nil archive disables payload archiving.
func NewStore(db *gorm.DB, archive storage.Client, bucket string, logger *zap.Logger) *Store {
	return &Store{
		db:      db,
		archive: archive,
		bucket:  bucket,
		logger:  logger,
	}
}

// CreateBatch stages one raw payload: it creates the batch row plus one
// StagingItem per raw record, and archives the payload when an archive
// client is configured. The payload must be a JSON array of records.
func (s *Store) CreateBatch(ctx context.Context, payload []byte) (*models.StagingBatch, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("staging payload is not a JSON array: %w", err)
	}

	batch := &models.StagingBatch{
		RawPayload: string(payload),
		Status:     models.StatusPending,
		TotalItems: len(records),
		PayloadRef: s.archivePayload(ctx, payload),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return err
		}
		for _, record := range records {
			item := models.StagingItem{
				StagingBatchID: batch.ID,
				RawProduct:     string(record),
				Status:         models.StatusPending,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to stage payload: %w", err)
	}

	s.logger.Info("Payload staged",
		zap.Uint64("staging_batch_id", batch.ID),
		zap.Int("total_items", batch.TotalItems),
	)
	return batch, nil
}

// archivePayload uploads the raw payload to object storage and returns the
// object key. Archive failures are logged, not fatal: the database copy is
// the durable one.
func (s *Store) archivePayload(ctx context.Context, payload []byte) string {
	if s.archive == nil {
		return ""
	}

	key := fmt.Sprintf("staging/batch-%s.json", uuid.NewString())
	_, err := s.archive.PutObject(ctx, s.bucket, key,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		s.logger.Warn("Payload archive upload failed", zap.Error(err))
		return ""
	}
	return key
}

// LoadPayload returns the raw payload of a batch, preferring the archived
// copy when one exists.
func (s *Store) LoadPayload(ctx context.Context, batch *models.StagingBatch) ([]byte, error) {
	if s.archive != nil && batch.PayloadRef != "" {
		obj, err := s.archive.GetObject(ctx, s.bucket, batch.PayloadRef, minio.GetObjectOptions{})
		if err == nil {
			defer obj.Close()
			data, readErr := io.ReadAll(obj)
			if readErr == nil {
				return data, nil
			}
			s.logger.Warn("Archived payload read failed", zap.Error(readErr))
		} else {
			s.logger.Warn("Archived payload fetch failed", zap.Error(err))
		}
	}
	return []byte(batch.RawPayload), nil
}

// StartBatch moves a pending batch to processing and stamps started_at.
// Re-delivery is tolerated: an already-processing batch is left untouched.
func (s *Store) StartBatch(ctx context.Context, batchID uint64) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.StagingBatch{}).
		Where("id = ? AND status = ?", batchID, models.StatusPending).
		Updates(map[string]any{
			"status":     models.StatusProcessing,
			"started_at": now,
		}).Error
}

// GetBatch loads one batch.
func (s *Store) GetBatch(ctx context.Context, batchID uint64) (*models.StagingBatch, error) {
	var batch models.StagingBatch
	if err := s.db.WithContext(ctx).First(&batch, batchID).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetBatchWithItems loads one batch and its items.
func (s *Store) GetBatchWithItems(ctx context.Context, batchID uint64) (*models.StagingBatch, error) {
	var batch models.StagingBatch
	if err := s.db.WithContext(ctx).Preload("Items").First(&batch, batchID).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// PendingItems returns the items of a batch that still need processing.
func (s *Store) PendingItems(ctx context.Context, batchID uint64) ([]models.StagingItem, error) {
	var items []models.StagingItem
	err := s.db.WithContext(ctx).
		Where("staging_batch_id = ? AND status = ?", batchID, models.StatusPending).
		Order("id").
		Find(&items).Error
	return items, err
}

// MarkItemProcessing stamps an item as picked up.
func (s *Store) MarkItemProcessing(ctx context.Context, itemID uint64) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.StagingItem{}).
		Where("id = ? AND status NOT IN ?", itemID, terminalStatuses).
		Updates(map[string]any{
			"status":     models.StatusProcessing,
			"started_at": now,
		}).Error
}

// MarkItemDone moves an item to its terminal done status and records the
// product id the item confirmed. Terminal states are never overwritten.
func (s *Store) MarkItemDone(ctx context.Context, itemID, productID uint64) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.StagingItem{}).
		Where("id = ? AND status NOT IN ?", itemID, terminalStatuses).
		Updates(map[string]any{
			"status":      models.StatusDone,
			"product_id":  productID,
			"finished_at": now,
		}).Error
}

// MarkItemFailed moves an item to its terminal failed status, retaining the
// error message for operator inspection.
func (s *Store) MarkItemFailed(ctx context.Context, itemID uint64, reason string) error {
	if len(reason) > maxErrorMessage {
		reason = reason[:maxErrorMessage]
	}
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.StagingItem{}).
		Where("id = ? AND status NOT IN ?", itemID, terminalStatuses).
		Updates(map[string]any{
			"status":        models.StatusFailed,
			"error_message": reason,
			"finished_at":   now,
		}).Error
}

// CompleteItem aggregates one item completion into the batch: it atomically
// increments processed_items and, when every item has been processed while
// the batch is still processing, transitions the batch to done exactly once.
// It reports whether this call performed that transition.
func (s *Store) CompleteItem(ctx context.Context, batchID uint64) (bool, error) {
	db := s.db.WithContext(ctx)

	// SQL-side increment; a read-modify-write on a cached count would lose
	// updates under concurrent completions.
	if err := db.Model(&models.StagingBatch{}).
		Where("id = ?", batchID).
		UpdateColumn("processed_items", gorm.Expr("processed_items + ?", 1)).Error; err != nil {
		return false, err
	}

	return s.FinishIfComplete(ctx, batchID)
}

// FinishIfComplete transitions the batch to done exactly once when every item
// has been processed while the batch is still processing. The guarded update
// makes the transition safe under concurrent completions. It reports whether
// this call performed the transition.
func (s *Store) FinishIfComplete(ctx context.Context, batchID uint64) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.StagingBatch{}).
		Where("id = ? AND status = ? AND processed_items >= total_items", batchID, models.StatusProcessing).
		Updates(map[string]any{
			"status":      models.StatusDone,
			"finished_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	s.stampDuration(ctx, batchID)
	s.logger.Info("Staging batch done", zap.Uint64("staging_batch_id", batchID))
	return true, nil
}

// FailBatch marks the whole batch failed. One item failure fails the entire
// batch; the policy is blunt but explicit. A batch already terminal is left
// untouched.
func (s *Store) FailBatch(ctx context.Context, batchID uint64) error {
	res := s.db.WithContext(ctx).Model(&models.StagingBatch{}).
		Where("id = ? AND status NOT IN ?", batchID, terminalStatuses).
		Updates(map[string]any{
			"status":      models.StatusFailed,
			"finished_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.stampDuration(ctx, batchID)
		s.logger.Warn("Staging batch failed", zap.Uint64("staging_batch_id", batchID))
	}
	return nil
}

// stampDuration records the measured batch duration once the batch turned
// terminal. Best effort: the timestamps remain the source of truth.
func (s *Store) stampDuration(ctx context.Context, batchID uint64) {
	var batch models.StagingBatch
	if err := s.db.WithContext(ctx).First(&batch, batchID).Error; err != nil {
		return
	}
	if batch.StartedAt == nil || batch.FinishedAt == nil {
		return
	}
	duration := batch.FinishedAt.Sub(*batch.StartedAt).Seconds()
	_ = s.db.WithContext(ctx).Model(&models.StagingBatch{}).
		Where("id = ?", batchID).
		UpdateColumn("duration_seconds", duration).Error
}
