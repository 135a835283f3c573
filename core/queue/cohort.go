package queue

import (
	"context"
	"sync"
	"time"
)

// Cohort joins a group of sibling jobs dispatched together onto a Pool.
// Wait blocks until every sibling has resolved and returns the first failure,
// which makes the whole cohort count as failed.
type Cohort struct {
	pool *Pool

	wg       sync.WaitGroup
	mu       sync.Mutex
	firstErr error
}

// NewCohort creates a cohort bound to the given pool.
func NewCohort(pool *Pool) *Cohort {
	return &Cohort{pool: pool}
}

// Go dispatches one sibling onto the pool. A non-positive timeout leaves the
// job bounded only by the pool's run context.
func (c *Cohort) Go(timeout time.Duration, fn func(ctx context.Context) error) {
	c.wg.Add(1)

	err := c.pool.Submit(func(ctx context.Context) {
		defer c.wg.Done()

		runCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if err := fn(runCtx); err != nil {
			c.record(err)
		}
	})
	if err != nil {
		// Pool already closed: the sibling never ran, which is a failure.
		c.record(err)
		c.wg.Done()
	}
}

func (c *Cohort) record(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.firstErr == nil {
		c.firstErr = err
	}
}

// Wait blocks until all siblings resolve and returns the first error.
func (c *Cohort) Wait() error {
	c.wg.Wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.firstErr
}
