// Package catalog implements the staged product-catalog synchronization
// pipeline.
//
// A run fetches a raw payload from a registered supplier, stages it as a
// batch of items, and processes every item independently: normalize the raw
// record, fan the downstream tasks out as a cohort, and only once all tasks
// succeeded write the product and its relation graph to the database. The
// staging store aggregates item completions into batch progress, and after a
// batch completes the reaper removes every product the run did not confirm.
//
// Subpackages hold the pipeline stages (normalizer, staging, relsync, tasks,
// supplier); this package ties them together and exposes the HTTP surface.
package catalog
