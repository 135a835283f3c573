package relsync

import (
	"context"
	"errors"
	"testing"

	"catalog-sync/core/database"
	"catalog-sync/feature/catalog/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func deskProduct(t *testing.T, db *gorm.DB) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:     10,
		Name:   "Desk",
		SKU:    "DESK-10",
		Price:  120.5,
		Status: models.ProductStatusActive,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func deskData() models.VariationData {
	return models.VariationData{
		Attributes: []models.CanonicalAttribute{
			{Name: "color", Values: []string{"red", "blue"}},
			{Name: "material", Values: []string{"wood", "metal"}},
		},
		Variations: []models.CanonicalVariation{
			{
				SKU: "DESK-10-RED-WOOD", Price: 125.5, Active: true,
				Options: map[string]string{"color": "red", "material": "wood"},
			},
			{
				SKU: "DESK-10-BLUE-METAL", Price: 120.5, Active: true,
				Options: map[string]string{"color": "blue", "material": "metal"},
			},
		},
	}
}

func deskWarehouses() models.WarehousePayload {
	return models.WarehousePayload{
		Warehouses: []models.CanonicalWarehouse{
			{
				Name:     "Main",
				Location: "Amman",
				Inventories: []models.CanonicalInventory{
					{VariationSKU: "DESK-10-RED-WOOD", Quantity: 7},
					{VariationSKU: "UNRELATED-99-GREEN-GLASS", Quantity: 3},
				},
			},
		},
	}
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSyncCreatesGraph(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db, zap.NewNop())
	product := deskProduct(t, db)

	err := engine.Sync(context.Background(), product, deskData(), deskWarehouses())
	require.NoError(t, err)

	var variations []models.ProductVariation
	require.NoError(t, db.Where("product_id = ?", product.ID).Order("id").Find(&variations).Error)
	require.Len(t, variations, 2)
	assert.Equal(t, "DESK-10-RED-WOOD", variations[0].SKU)
	assert.Equal(t, 125.5, variations[0].Price)
	assert.True(t, variations[0].Active)

	// 2 colors + 2 materials = 4 options, each variation linked to 2.
	assert.Equal(t, int64(4), count(t, db, &models.ProductOption{}))
	assert.Equal(t, int64(4), count(t, db, &models.ProductOptionVariation{}))
	assert.Equal(t, int64(2), count(t, db, &models.ProductAttribute{}))
	assert.Equal(t, int64(4), count(t, db, &models.ProductAttributeValue{}))

	// Inventory exists for the known SKU only; the unknown one was skipped.
	var inventories []models.WarehouseInventory
	require.NoError(t, db.Find(&inventories).Error)
	require.Len(t, inventories, 1)
	assert.Equal(t, int64(7), inventories[0].Quantity)
	assert.Equal(t, variations[0].ID, inventories[0].ProductVariationID)
}

func TestSyncUpsertsProductRow(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db, zap.NewNop())

	batch := uint64(3)
	product := &models.Product{
		ID:          10,
		Name:        "Desk",
		SKU:         "DESK-10",
		Price:       120.5,
		Status:      models.ProductStatusActive,
		LastBatchID: &batch,
	}
	require.NoError(t, engine.Sync(context.Background(), product, deskData(), models.WarehousePayload{}))

	var row models.Product
	require.NoError(t, db.Where("id = ?", 10).First(&row).Error)
	assert.Equal(t, "Desk", row.Name)
	assert.Equal(t, 120.5, row.Price)
	require.NotNil(t, row.LastBatchID)
	assert.Equal(t, uint64(3), *row.LastBatchID)

	nextBatch := uint64(4)
	product.Price = 99
	product.LastBatchID = &nextBatch
	require.NoError(t, engine.Sync(context.Background(), product, deskData(), models.WarehousePayload{}))

	require.NoError(t, db.Where("id = ?", 10).First(&row).Error)
	assert.Equal(t, 99.0, row.Price)
	require.NotNil(t, row.LastBatchID)
	assert.Equal(t, uint64(4), *row.LastBatchID)
	assert.Equal(t, int64(1), count(t, db, &models.Product{}))
}

func TestSyncIdempotent(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db, zap.NewNop())
	product := deskProduct(t, db)

	require.NoError(t, engine.Sync(context.Background(), product, deskData(), deskWarehouses()))
	require.NoError(t, engine.Sync(context.Background(), product, deskData(), deskWarehouses()))

	assert.Equal(t, int64(2), count(t, db, &models.ProductVariation{}))
	assert.Equal(t, int64(4), count(t, db, &models.ProductOption{}))
	assert.Equal(t, int64(4), count(t, db, &models.ProductOptionVariation{}))
	assert.Equal(t, int64(2), count(t, db, &models.ProductAttribute{}))
	assert.Equal(t, int64(4), count(t, db, &models.ProductAttributeValue{}))
	assert.Equal(t, int64(1), count(t, db, &models.Warehouse{}))
	assert.Equal(t, int64(1), count(t, db, &models.WarehouseInventory{}))
}

func TestSyncFullReplace(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db, zap.NewNop())
	product := deskProduct(t, db)

	require.NoError(t, engine.Sync(context.Background(), product, deskData(), models.WarehousePayload{}))

	// Re-sync with only one variation left.
	reduced := deskData()
	reduced.Attributes = []models.CanonicalAttribute{
		{Name: "color", Values: []string{"red"}},
		{Name: "material", Values: []string{"wood"}},
	}
	reduced.Variations = reduced.Variations[:1]
	require.NoError(t, engine.Sync(context.Background(), product, reduced, models.WarehousePayload{}))

	assert.Equal(t, int64(1), count(t, db, &models.ProductVariation{}))
	assert.Equal(t, int64(2), count(t, db, &models.ProductOption{}))
	assert.Equal(t, int64(2), count(t, db, &models.ProductOptionVariation{}))

	// Global dictionaries are append-only: blue/metal values survive.
	assert.Equal(t, int64(4), count(t, db, &models.ProductAttributeValue{}))
}

func TestSyncSharedGlobalDictionaries(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db, zap.NewNop())

	product := deskProduct(t, db)
	require.NoError(t, engine.Sync(context.Background(), product, deskData(), models.WarehousePayload{}))

	other := &models.Product{ID: 11, Name: "Chair", SKU: "CHAIR-11", Price: 60, Status: models.ProductStatusActive}
	require.NoError(t, db.Create(other).Error)

	otherData := models.VariationData{
		Attributes: []models.CanonicalAttribute{
			{Name: "color", Values: []string{"red"}},
			{Name: "material", Values: []string{"wood"}},
		},
		Variations: []models.CanonicalVariation{
			{
				SKU: "CHAIR-11-RED-WOOD", Price: 60, Active: true,
				Options: map[string]string{"color": "red", "material": "wood"},
			},
		},
	}
	require.NoError(t, engine.Sync(context.Background(), other, otherData, models.WarehousePayload{}))

	// Both products share the single "red" value row.
	var reds []models.ProductAttributeValue
	require.NoError(t, db.Where("value = ?", "red").Find(&reds).Error)
	assert.Len(t, reds, 1)

	assert.Equal(t, int64(2), count(t, db, &models.ProductAttribute{}))

	// Options stay product-scoped: one "red" option per product.
	var redOptions []models.ProductOption
	require.NoError(t, db.Where("value = ?", "red").Find(&redOptions).Error)
	assert.Len(t, redOptions, 2)
}

func TestSyncInventoryUpsert(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db, zap.NewNop())
	product := deskProduct(t, db)

	require.NoError(t, engine.Sync(context.Background(), product, deskData(), deskWarehouses()))

	updated := deskWarehouses()
	updated.Warehouses[0].Inventories[0].Quantity = 42
	require.NoError(t, engine.Sync(context.Background(), product, deskData(), updated))

	var inventories []models.WarehouseInventory
	require.NoError(t, db.Find(&inventories).Error)
	require.Len(t, inventories, 1)
	assert.Equal(t, int64(42), inventories[0].Quantity)
}

func TestSyncRollbackOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})
	db, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)

	// The product upsert runs inside the same transaction, so a failure
	// further down rolls the freshly written product row back with it.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `products` WHERE id = ?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO `products`").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("DELETE FROM `product_option_variations`").
		WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	engine := NewEngine(db, zap.NewNop())
	product := &models.Product{ID: 10, Name: "Desk", SKU: "DESK-10"}

	err = engine.Sync(context.Background(), product, deskData(), models.WarehousePayload{})
	require.Error(t, err)

	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, uint64(10), syncErr.ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockIsKeyedByProduct(t *testing.T) {
	engine := NewEngine(nil, zap.NewNop())
	assert.Same(t, engine.lock(1), engine.lock(1))
	assert.NotSame(t, engine.lock(1), engine.lock(2))
}
