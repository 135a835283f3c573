package models

import (
	"time"
)

// Status values shared by staging batches and staging items.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// Product status values.
const (
	ProductStatusActive  = "active"
	ProductStatusDeleted = "deleted"
)

// Product is the destination product row. Its primary key is the external
// numeric identifier from the supplier, not an auto-increment.
type Product struct {
	ID       uint64  `gorm:"primaryKey;autoIncrement:false"`
	Name     string  `gorm:"size:255;not null"`
	SKU      string  `gorm:"column:sku;size:255;index"`
	Price    float64 `gorm:"type:decimal(20,2)"`
	Currency string  `gorm:"size:8;default:USD"`
	Status   string  `gorm:"size:16;default:active"`
	// LastBatchID marks the staging batch that last confirmed this product.
	// The reaper compares it against the current run instead of relying on
	// wall-clock staleness.
	LastBatchID *uint64 `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the table name.
func (Product) TableName() string {
	return "products"
}

// ProductVariation belongs to exactly one product and is fully replaced on
// every re-sync of that product.
type ProductVariation struct {
	ID        uint64  `gorm:"primaryKey"`
	ProductID uint64  `gorm:"index;not null"`
	SKU       string  `gorm:"column:sku;size:255;index"`
	Price     float64 `gorm:"type:decimal(20,2)"`
	// Active is written explicitly on every create; no column default so a
	// false value survives the insert.
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name.
func (ProductVariation) TableName() string {
	return "product_variations"
}

// ProductOption is one attribute/value pair scoped to a product. Like
// variations, options are fully replaced on re-sync.
type ProductOption struct {
	ID                 uint64 `gorm:"primaryKey"`
	ProductID          uint64 `gorm:"uniqueIndex:idx_product_attr_value,priority:1"`
	ProductAttributeID uint64 `gorm:"uniqueIndex:idx_product_attr_value,priority:2"`
	Value              string `gorm:"size:255;uniqueIndex:idx_product_attr_value,priority:3"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName overrides the table name.
func (ProductOption) TableName() string {
	return "product_options"
}

// ProductOptionVariation joins variations to the options they embody.
type ProductOptionVariation struct {
	ID                 uint64 `gorm:"primaryKey"`
	ProductOptionID    uint64 `gorm:"index"`
	ProductVariationID uint64 `gorm:"index"`
}

// TableName overrides the table name.
func (ProductOptionVariation) TableName() string {
	return "product_option_variations"
}

// ProductAttribute is a global dictionary entry shared across products.
// It must never be duplicated by name.
type ProductAttribute struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"size:255;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name.
func (ProductAttribute) TableName() string {
	return "product_attributes"
}

// ProductAttributeValue is a global dictionary entry, unique per
// (attribute, value).
type ProductAttributeValue struct {
	ID                 uint64 `gorm:"primaryKey"`
	ProductAttributeID uint64 `gorm:"uniqueIndex:idx_attribute_value,priority:1"`
	Value              string `gorm:"size:255;uniqueIndex:idx_attribute_value,priority:2"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName overrides the table name.
func (ProductAttributeValue) TableName() string {
	return "product_attribute_values"
}

// Warehouse is a global dictionary entry, unique per (name, location).
type Warehouse struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"size:255;uniqueIndex:idx_warehouse_name_location,priority:1"`
	Location  string `gorm:"size:255;uniqueIndex:idx_warehouse_name_location,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name.
func (Warehouse) TableName() string {
	return "warehouses"
}

// WarehouseInventory holds the quantity of one variation in one warehouse,
// upserted keyed by (warehouse, variation).
type WarehouseInventory struct {
	ID                 uint64 `gorm:"primaryKey"`
	WarehouseID        uint64 `gorm:"uniqueIndex:idx_warehouse_variation,priority:1"`
	ProductVariationID uint64 `gorm:"uniqueIndex:idx_warehouse_variation,priority:2"`
	Quantity           int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName overrides the table name.
func (WarehouseInventory) TableName() string {
	return "warehouse_inventories"
}

// StagingBatch identifies one sync run. It owns many StagingItems and is
// terminal once its status is done or failed.
type StagingBatch struct {
	ID uint64 `gorm:"primaryKey"`
	// PayloadRef is the object-storage key of the archived raw payload,
	// empty when archiving is disabled.
	PayloadRef      string `gorm:"size:512"`
	RawPayload      string `gorm:"type:longtext"`
	Status          string `gorm:"size:16;default:pending;index"`
	TotalItems      int
	ProcessedItems  int
	StartedAt       *time.Time
	FinishedAt      *time.Time
	DurationSeconds float64
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []StagingItem `gorm:"foreignKey:StagingBatchID"`
}

// TableName overrides the table name.
func (StagingBatch) TableName() string {
	return "staging_batches"
}

// IsTerminal reports whether the batch reached a final status.
func (b *StagingBatch) IsTerminal() bool {
	return b.Status == StatusDone || b.Status == StatusFailed
}

// StagingItem is one raw record's processing lifecycle within a batch. It is
// mutated exactly once to a terminal status by the orchestrator or its
// failure handler.
type StagingItem struct {
	ID             uint64 `gorm:"primaryKey"`
	StagingBatchID uint64 `gorm:"index"`
	RawProduct     string `gorm:"type:longtext"`
	// ProductID is the external product id, set once normalization
	// succeeds; it ties the item to the row the run confirmed.
	ProductID    *uint64 `gorm:"index"`
	Status       string  `gorm:"size:16;default:pending"`
	ErrorMessage *string `gorm:"size:1024"`
	StartedAt    *time.Time
	FinishedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the table name.
func (StagingItem) TableName() string {
	return "staging_items"
}

// All returns every persisted model, in dependency order, for migration.
func All() []any {
	return []any{
		&Product{},
		&ProductAttribute{},
		&ProductAttributeValue{},
		&ProductVariation{},
		&ProductOption{},
		&ProductOptionVariation{},
		&Warehouse{},
		&WarehouseInventory{},
		&StagingBatch{},
		&StagingItem{},
	}
}
