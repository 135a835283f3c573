package relsync

import "fmt"

// SyncError reports an aborted relational sync transaction. No partial
// writes survive it; the caller records it as an item failure.
type SyncError struct {
	ProductID uint64
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("relational sync of product %d failed: %v", e.ProductID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
