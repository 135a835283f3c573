// Package relsync persists the canonical product graph.
//
// The Engine commits variations, options, the global attribute and warehouse
// dictionaries, and per-variation inventory for one product as a single
// all-or-nothing transaction. Product-scoped rows (variations, options,
// inventory) are replaced wholesale on every sync, while global dictionaries
// rely on get-or-create under unique constraints, keeping the engine
// idempotent under retries and safe under concurrent item processing across
// products.
//
// Two sync attempts for the same product are serialized through a lock keyed
// by product id; the delete-then-recreate strategy is not safe to interleave.
package relsync
