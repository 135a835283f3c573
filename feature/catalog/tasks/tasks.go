package tasks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"catalog-sync/feature/catalog/models"

	"go.uber.org/zap"
)

// Config holds endpoints for the downstream integrations. Empty values
// disable the corresponding outbound call; the task then succeeds as a no-op.
type Config struct {
	// WebhookURL is the partner webhook endpoint notified per product.
	WebhookURL string `mapstructure:"webhook_url" default:""`
	// InventoryURL is the external inventory-management endpoint.
	InventoryURL string `mapstructure:"inventory_url" default:""`
	// InventoryApiKey authenticates against the inventory endpoint.
	InventoryApiKey string `mapstructure:"inventory_api_key" default:""`
}

// Task is one downstream side effect executed per normalized product. Tasks
// in a cohort run concurrently and must all succeed before the product is
// written to the relational schema.
type Task interface {
	// Name identifies the task in logs and error messages.
	Name() string
	// Run executes the task for one product. It must honor ctx cancellation.
	Run(ctx context.Context, product *models.CanonicalProduct) error
}

// TaskError wraps a task failure with the task name, so a cohort error can be
// attributed without parsing message text.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Defaults builds the standard fan-out cohort: stock notification, partner
// webhook and inventory integration.
func Defaults(cfg Config, logger *zap.Logger) []Task {
	client := &http.Client{Timeout: 30 * time.Second}
	return []Task{
		NewStockNotification(logger),
		NewPartnerWebhook(cfg.WebhookURL, client, logger),
		NewInventoryIntegration(cfg.InventoryURL, cfg.InventoryApiKey, client, logger),
	}
}
