package queue

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrPoolClosed is returned by Submit after the pool has been stopped.
var ErrPoolClosed = errors.New("queue: pool is closed")

// Job is one unit of work dispatched onto the pool.
type Job func(ctx context.Context)

// Pool is a queue-backed worker pool. Jobs are submitted onto a buffered
// channel and drained by a fixed set of workers.
type Pool struct {
	jobs    chan Job
	workers int
	logger  *zap.Logger

	// mu guards closed and the jobs channel lifecycle. Submitters hold the
	// read side across the send so Stop cannot close the channel under a
	// blocked sender.
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	started bool
}

// NewPool creates a pool with the configured worker count and buffer size.
func NewPool(cfg Config, logger *zap.Logger) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	buffer := cfg.Buffer
	if buffer < 0 {
		buffer = 0
	}
	return &Pool{
		jobs:    make(chan Job, buffer),
		workers: workers,
		logger:  logger,
	}
}

// Start launches the workers. The given context is passed to every job and
// cancelling it makes workers exit once the queue drains.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(ctx, id, job)
	}
}

// run executes a single job, isolating worker goroutines from panics so one
// bad item cannot take the whole pool down.
func (p *Pool) run(ctx context.Context, id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker recovered from panic",
				zap.Int("worker", id),
				zap.Any("panic", r),
			)
		}
	}()
	job(ctx)
}

// Submit enqueues a job. It blocks when the buffer is full and returns
// ErrPoolClosed after Stop. The read lock is held across the send: workers
// keep draining while submitters block, and Stop waits for them before
// closing the channel.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	p.jobs <- job
	return nil
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}
