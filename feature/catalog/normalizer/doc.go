// Package normalizer turns raw supplier records into canonical products.
//
// Normalization is pure: it validates the record's shape, derives the base
// SKU from the name and external id, builds exactly two attribute definitions
// (color and material, values deduplicated in first-seen order), prices each
// variation as base price plus its additional price, and passes the warehouse
// payload through unchanged.
//
// Records the normalizer cannot handle fail with *MalformedRecordError; the
// caller decides how that failure propagates into batch status.
package normalizer
