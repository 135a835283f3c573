package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalog-sync/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func deskProduct() *models.CanonicalProduct {
	return &models.CanonicalProduct{
		ID:     10,
		Name:   "Desk",
		Price:  120.5,
		SKU:    "DESK-10",
		Status: models.ProductStatusActive,
		Variations: models.VariationData{
			Variations: []models.CanonicalVariation{
				{SKU: "DESK-10-RED-WOOD", Price: 125.5, Active: true},
				{SKU: "DESK-10-BLUE-METAL", Price: 120.5, Active: true},
			},
		},
		Warehouses: models.WarehousePayload{
			Warehouses: []models.CanonicalWarehouse{
				{
					Name:     "Main",
					Location: "Amman",
					Inventories: []models.CanonicalInventory{
						{VariationSKU: "DESK-10-RED-WOOD", Quantity: 7},
					},
				},
			},
		},
	}
}

func TestStockNotificationFlagsOutOfStock(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	task := NewStockNotification(zap.New(core))

	require.NoError(t, task.Run(context.Background(), deskProduct()))

	warns := logs.FilterMessage("Variation out of stock").All()
	require.Len(t, warns, 1)
	assert.Equal(t, "DESK-10-BLUE-METAL", warns[0].ContextMap()["variation_sku"])

	infos := logs.FilterMessage("Stock level").All()
	require.Len(t, infos, 1)
	assert.Equal(t, int64(7), infos[0].ContextMap()["quantity"])
}

func TestStockNotificationHonorsContext(t *testing.T) {
	task := NewStockNotification(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := task.Run(ctx, deskProduct())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPartnerWebhookPostsProduct(t *testing.T) {
	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	task := NewPartnerWebhook(server.URL, server.Client(), zap.NewNop())
	require.NoError(t, task.Run(context.Background(), deskProduct()))

	assert.Equal(t, uint64(10), got.ID)
	assert.Equal(t, "DESK-10", got.SKU)
	assert.Equal(t, 120.5, got.Price)
}

func TestPartnerWebhookRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	task := NewPartnerWebhook(server.URL, server.Client(), zap.NewNop())
	err := task.Run(context.Background(), deskProduct())
	require.Error(t, err)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "partner_webhook", taskErr.Task)
}

func TestPartnerWebhookDisabledWithoutURL(t *testing.T) {
	task := NewPartnerWebhook("", http.DefaultClient, zap.NewNop())
	assert.NoError(t, task.Run(context.Background(), deskProduct()))
}

func TestInventoryIntegrationPushesItems(t *testing.T) {
	var got inventoryPayload
	var apiKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		apiKey = r.Header.Get("X-API-Key")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
	}))
	defer server.Close()

	task := NewInventoryIntegration(server.URL, "secret", server.Client(), zap.NewNop())
	require.NoError(t, task.Run(context.Background(), deskProduct()))

	assert.Equal(t, "secret", apiKey)
	assert.Equal(t, "DESK-10", got.ProductSKU)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Main", got.Items[0].Warehouse)
	assert.Equal(t, int64(7), got.Items[0].Quantity)
}

func TestInventoryIntegrationHonorsContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	task := NewInventoryIntegration(server.URL, "", server.Client(), zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := task.Run(ctx, deskProduct())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTaskErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := &TaskError{Task: "partner_webhook", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "partner_webhook")
}

func TestDefaultsBuildsCohort(t *testing.T) {
	got := Defaults(Config{WebhookURL: "http://example.test"}, zap.NewNop())
	require.Len(t, got, 3)
	assert.Equal(t, "stock_notification", got[0].Name())
	assert.Equal(t, "partner_webhook", got[1].Name())
	assert.Equal(t, "inventory_integration", got[2].Name())
}
