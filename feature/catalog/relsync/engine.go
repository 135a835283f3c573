package relsync

import (
	"context"
	"sync"

	"catalog-sync/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Engine replaces the relational graph of a product inside one transaction.
// Sync invocations for the same product id are serialized through a keyed
// lock: the delete-then-recreate step would otherwise race with a concurrent
// re-sync of the same product and lose sibling inventory rows.
type Engine struct {
	db     *gorm.DB
	logger *zap.Logger

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewEngine creates a relational sync engine.
func NewEngine(db *gorm.DB, logger *zap.Logger) *Engine {
	return &Engine{
		db:     db,
		logger: logger,
		locks:  make(map[uint64]*sync.Mutex),
	}
}

// lock returns the mutex guarding one product id.
func (e *Engine) lock(productID uint64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[productID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[productID] = l
	}
	return l
}

// Sync commits one product and its canonical variation and warehouse data as
// a single atomic transaction: the product row is upserted together with its
// relation graph, so an aborted sync leaves no partially updated product.
// Variations and options are fully replaced; global dictionaries (attributes,
// attribute values, warehouses) use get-or-create so repeated or concurrent
// syncs never duplicate them. Any failure rolls the whole transaction back
// and surfaces as *SyncError.
func (e *Engine) Sync(ctx context.Context, product *models.Product, data models.VariationData, warehouses models.WarehousePayload) error {
	l := e.lock(product.ID)
	l.Lock()
	defer l.Unlock()

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 0. Upsert the product row. The id is matched with an explicit SQL
		// condition; a struct condition would be dropped for a zero id and
		// silently match an unrelated row.
		if err := tx.Where("id = ?", product.ID).
			Assign(map[string]any{
				"name":          product.Name,
				"sku":           product.SKU,
				"price":         product.Price,
				"status":        product.Status,
				"last_batch_id": product.LastBatchID,
			}).
			FirstOrCreate(&models.Product{ID: product.ID}).Error; err != nil {
			return err
		}

		// 1. Full replace: remove this product's variations and options.
		// Join rows go first, they reference both sides.
		variationIDs := tx.Model(&models.ProductVariation{}).
			Select("id").
			Where("product_id = ?", product.ID)
		if err := tx.Where("product_variation_id IN (?)", variationIDs).
			Delete(&models.ProductOptionVariation{}).Error; err != nil {
			return err
		}
		// Inventory rows key on variation ids; recreated variations get new
		// ids, so stale rows would be orphaned and duplicated on upsert.
		if err := tx.Where("product_variation_id IN (?)", variationIDs).
			Delete(&models.WarehouseInventory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).
			Delete(&models.ProductVariation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).
			Delete(&models.ProductOption{}).Error; err != nil {
			return err
		}

		// 2. Global attribute dictionary.
		attributeIDs := make(map[string]uint64, len(data.Attributes))
		for _, attr := range data.Attributes {
			var attribute models.ProductAttribute
			if err := tx.Where(models.ProductAttribute{Name: attr.Name}).
				FirstOrCreate(&attribute).Error; err != nil {
				return err
			}
			attributeIDs[attr.Name] = attribute.ID

			for _, value := range attr.Values {
				var av models.ProductAttributeValue
				if err := tx.Where(models.ProductAttributeValue{
					ProductAttributeID: attribute.ID,
					Value:              value,
				}).FirstOrCreate(&av).Error; err != nil {
					return err
				}
			}
		}

		// 3. Product-scoped options for every (attribute, value) pair.
		optionIDs := make(map[string]uint64)
		for _, attr := range data.Attributes {
			for _, value := range attr.Values {
				var opt models.ProductOption
				if err := tx.Where(models.ProductOption{
					ProductID:          product.ID,
					ProductAttributeID: attributeIDs[attr.Name],
					Value:              value,
				}).FirstOrCreate(&opt).Error; err != nil {
					return err
				}
				optionIDs[attr.Name+":"+value] = opt.ID
			}
		}

		// 4. Variations plus their option links.
		createdVariations := make(map[string]uint64, len(data.Variations))
		for _, v := range data.Variations {
			variation := models.ProductVariation{
				ProductID: product.ID,
				SKU:       v.SKU,
				Price:     v.Price,
				Active:    v.Active,
			}
			if err := tx.Create(&variation).Error; err != nil {
				return err
			}
			createdVariations[v.SKU] = variation.ID

			for attr, value := range v.Options {
				optID, ok := optionIDs[attr+":"+value]
				if !ok {
					// Option reference not registered in step 2;
					// skipped rather than failing the product.
					continue
				}
				if err := tx.Create(&models.ProductOptionVariation{
					ProductOptionID:    optID,
					ProductVariationID: variation.ID,
				}).Error; err != nil {
					return err
				}
			}
		}

		// 5. Global warehouses and per-variation inventory upserts.
		for _, w := range warehouses.Warehouses {
			var warehouse models.Warehouse
			if err := tx.Where(models.Warehouse{
				Name:     w.Name,
				Location: w.Location,
			}).FirstOrCreate(&warehouse).Error; err != nil {
				return err
			}

			for _, inv := range w.Inventories {
				variationID, ok := createdVariations[inv.VariationSKU]
				if !ok {
					// Unknown SKU: belongs to another product or a
					// stale variation.
					continue
				}
				var row models.WarehouseInventory
				if err := tx.Where(models.WarehouseInventory{
					WarehouseID:        warehouse.ID,
					ProductVariationID: variationID,
				}).Assign(map[string]any{
					"quantity": inv.Quantity,
				}).FirstOrCreate(&row).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		e.logger.Error("Relational sync aborted",
			zap.Uint64("product_id", product.ID),
			zap.Error(err),
		)
		return &SyncError{ProductID: product.ID, Err: err}
	}

	return nil
}
