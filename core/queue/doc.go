// Package queue provides the worker pool backing staged item processing and
// the fan-out of downstream tasks.
//
// # Pool
//
// The Pool dispatches independent units of work onto a fixed set of workers
// reading from a buffered channel. No ordering is guaranteed between jobs;
// anything that needs ordering must serialize itself (the relational sync
// engine does this with a per-product lock).
//
// # Cohort
//
// A Cohort is the join primitive for sibling tasks dispatched as one unit:
// Go fans each task onto the pool with an optional per-task timeout, Wait
// blocks until all siblings resolve and reports the first failure. The
// integration orchestrator uses a cohort per staging item to gate persistence
// on the success of every downstream task.
package queue
