package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"catalog-sync/feature/catalog/models"

	"go.uber.org/zap"
)

// InventoryIntegration pushes per-variation stock figures to the external
// inventory-management system. An empty URL disables the call.
type InventoryIntegration struct {
	url    string
	apiKey string
	client *http.Client
	logger *zap.Logger
}

func NewInventoryIntegration(url, apiKey string, client *http.Client, logger *zap.Logger) *InventoryIntegration {
	return &InventoryIntegration{url: url, apiKey: apiKey, client: client, logger: logger}
}

func (t *InventoryIntegration) Name() string { return "inventory_integration" }

type inventoryPayload struct {
	ProductID  uint64          `json:"product_id"`
	ProductSKU string          `json:"product_sku"`
	Items      []inventoryItem `json:"items"`
}

type inventoryItem struct {
	VariationSKU string `json:"variation_sku"`
	Warehouse    string `json:"warehouse"`
	Location     string `json:"location"`
	Quantity     int64  `json:"quantity"`
}

func (t *InventoryIntegration) Run(ctx context.Context, product *models.CanonicalProduct) error {
	if t.url == "" {
		return nil
	}

	payload := inventoryPayload{
		ProductID:  product.ID,
		ProductSKU: product.SKU,
	}
	for _, warehouse := range product.Warehouses.Warehouses {
		for _, inventory := range warehouse.Inventories {
			payload.Items = append(payload.Items, inventoryItem{
				VariationSKU: inventory.VariationSKU,
				Warehouse:    warehouse.Name,
				Location:     warehouse.Location,
				Quantity:     inventory.Quantity,
			})
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &TaskError{Task: t.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.url, bytes.NewReader(body))
	if err != nil {
		return &TaskError{Task: t.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("X-API-Key", t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return &TaskError{Task: t.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TaskError{
			Task: t.Name(),
			Err:  fmt.Errorf("inventory endpoint returned status %d", resp.StatusCode),
		}
	}

	t.logger.Debug("Inventory pushed",
		zap.Uint64("product_id", product.ID),
		zap.Int("items", len(payload.Items)),
	)
	return nil
}
