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

// PartnerWebhook notifies an external partner endpoint about each synced
// product. An empty URL disables the call.
type PartnerWebhook struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewPartnerWebhook(url string, client *http.Client, logger *zap.Logger) *PartnerWebhook {
	return &PartnerWebhook{url: url, client: client, logger: logger}
}

func (t *PartnerWebhook) Name() string { return "partner_webhook" }

// webhookPayload is the partner-facing product summary; variations and
// warehouses stay internal.
type webhookPayload struct {
	ID     uint64  `json:"id"`
	SKU    string  `json:"sku"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Status string  `json:"status"`
}

func (t *PartnerWebhook) Run(ctx context.Context, product *models.CanonicalProduct) error {
	if t.url == "" {
		return nil
	}

	body, err := json.Marshal(webhookPayload{
		ID:     product.ID,
		SKU:    product.SKU,
		Name:   product.Name,
		Price:  product.Price,
		Status: product.Status,
	})
	if err != nil {
		return &TaskError{Task: t.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return &TaskError{Task: t.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return &TaskError{Task: t.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TaskError{
			Task: t.Name(),
			Err:  fmt.Errorf("webhook returned status %d", resp.StatusCode),
		}
	}

	t.logger.Debug("Partner webhook delivered",
		zap.Uint64("product_id", product.ID),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}
