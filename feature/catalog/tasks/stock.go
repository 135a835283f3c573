package tasks

import (
	"context"

	"catalog-sync/feature/catalog/models"

	"go.uber.org/zap"
)

// StockNotification reports per-variation stock levels. It aggregates the
// product's warehouse quantities and flags variations that are out of stock.
type StockNotification struct {
	logger *zap.Logger
}

func NewStockNotification(logger *zap.Logger) *StockNotification {
	return &StockNotification{logger: logger}
}

func (t *StockNotification) Name() string { return "stock_notification" }

func (t *StockNotification) Run(ctx context.Context, product *models.CanonicalProduct) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	totals := make(map[string]int64, len(product.Variations.Variations))
	for _, warehouse := range product.Warehouses.Warehouses {
		for _, inventory := range warehouse.Inventories {
			totals[inventory.VariationSKU] += inventory.Quantity
		}
	}

	for _, variation := range product.Variations.Variations {
		total := totals[variation.SKU]
		if total == 0 {
			t.logger.Warn("Variation out of stock",
				zap.Uint64("product_id", product.ID),
				zap.String("variation_sku", variation.SKU),
			)
			continue
		}
		t.logger.Info("Stock level",
			zap.Uint64("product_id", product.ID),
			zap.String("variation_sku", variation.SKU),
			zap.Int64("quantity", total),
		)
	}
	return nil
}
