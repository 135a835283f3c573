// Package staging persists sync runs and tracks their progress.
//
// A StagingBatch is created per raw payload, with one StagingItem per raw
// record. Items are processed independently and report their terminal status
// back through the store, which doubles as the progress tracker: completions
// are aggregated with an atomic SQL increment and a guarded status update so
// the batch transitions to done exactly once, no matter how many items finish
// concurrently. A single item failure marks the whole batch failed.
//
// Raw payloads can additionally be archived to object storage; the database
// copy stays authoritative and archive failures only log a warning.
package staging
