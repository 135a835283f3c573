// Package models defines the persisted relational graph of the catalog and
// the transient canonical product model.
//
// # Persisted graph
//
// Product (1)-(N) ProductVariation; Product (1)-(N) ProductOption;
// ProductVariation (M)-(N) ProductOption via ProductOptionVariation;
// ProductAttribute (1)-(N) ProductAttributeValue as global dictionaries
// shared across products; Warehouse (1)-(N) WarehouseInventory keyed by
// (warehouse, variation).
//
// Variations and options are product-scoped and fully replaced on every
// re-sync; attributes, attribute values, and warehouses are global and must
// never be duplicated, which the unique indexes enforce.
//
// # Staging
//
// StagingBatch records one sync run, StagingItem one raw record within it.
// Both move through pending → processing → done|failed.
package models
