package catalog

import (
	"context"

	"catalog-sync/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reaper removes products the latest run no longer delivered. Membership in
// the run is decided by the last_batch_id marker stamped during the sync, so
// the cutoff is exact rather than a wall-clock heuristic.
type Reaper struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewReaper(db *gorm.DB, logger *zap.Logger) *Reaper {
	return &Reaper{db: db, logger: logger}
}

// Run deletes every product that batchID did not confirm, along with its
// variations, options and inventory rows. It returns the number of products
// removed. Callers must only invoke it after the batch has completed; reaping
// while items are still in flight would delete products whose confirmation
// simply has not landed yet.
func (r *Reaper) Run(ctx context.Context, batchID uint64) (int64, error) {
	var reaped int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var productIDs []uint64
		if err := tx.Model(&models.Product{}).
			Where("last_batch_id IS NULL OR last_batch_id <> ?", batchID).
			Pluck("id", &productIDs).Error; err != nil {
			return err
		}
		if len(productIDs) == 0 {
			return nil
		}

		variationIDs := tx.Model(&models.ProductVariation{}).
			Select("id").
			Where("product_id IN ?", productIDs)

		if err := tx.Where("product_variation_id IN (?)", variationIDs).
			Delete(&models.ProductOptionVariation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_variation_id IN (?)", variationIDs).
			Delete(&models.WarehouseInventory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id IN ?", productIDs).
			Delete(&models.ProductVariation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id IN ?", productIDs).
			Delete(&models.ProductOption{}).Error; err != nil {
			return err
		}

		res := tx.Where("id IN ?", productIDs).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		reaped = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	if reaped > 0 {
		r.logger.Info("Outdated products reaped",
			zap.Uint64("staging_batch_id", batchID),
			zap.Int64("products", reaped),
		)
	}
	return reaped, nil
}
