package models

// CanonicalProduct is the normalized, source-agnostic representation of one
// catalog item. It is a transient DTO: only its relational projection is
// persisted.
type CanonicalProduct struct {
	ID         uint64           `json:"id"`
	Name       string           `json:"name"`
	Price      float64          `json:"price"`
	SKU        string           `json:"sku"`
	Status     string           `json:"status"`
	Variations VariationData    `json:"variations"`
	Warehouses WarehousePayload `json:"warehouses"`
}

// VariationData carries the attribute dictionary and the variation list of
// one canonical product.
type VariationData struct {
	// Attributes hold each attribute's distinct values in first-seen order.
	Attributes []CanonicalAttribute `json:"attributes"`
	Variations []CanonicalVariation `json:"variations"`
}

// CanonicalAttribute is one attribute definition (name plus its distinct
// values in insertion order of first occurrence).
type CanonicalAttribute struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// CanonicalVariation is one sellable variation of a canonical product.
// Its SKU is {product_sku}-{UPPER(color)}-{UPPER(material)} and must be
// unique within the product.
type CanonicalVariation struct {
	SKU     string            `json:"sku"`
	Price   float64           `json:"price"`
	Active  bool              `json:"active"`
	Options map[string]string `json:"options"`
}

// WarehousePayload is the pass-through warehouse inventory section of a raw
// record; it may be empty.
type WarehousePayload struct {
	Warehouses []CanonicalWarehouse `json:"warehouses"`
}

// CanonicalWarehouse names a warehouse and the variation quantities it holds.
type CanonicalWarehouse struct {
	Name        string               `json:"name"`
	Location    string               `json:"location"`
	Inventories []CanonicalInventory `json:"inventories"`
}

// CanonicalInventory is one stock figure, keyed by variation SKU.
type CanonicalInventory struct {
	VariationSKU string `json:"variation_sku"`
	Quantity     int64  `json:"quantity"`
}
