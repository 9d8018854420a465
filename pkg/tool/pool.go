package tool

import (
	"context"
	"fmt"
	"sync"
)

// workItem carries one blocking invocation onto the pool
type workItem struct {
	ctx    context.Context
	fn     func(ctx context.Context) (string, error)
	result chan workResult
}

type workResult struct {
	output string
	err    error
}

// WorkerPool runs blocking tool handlers on a fixed set of goroutines,
// sized independently of request concurrency so synchronous drivers
// (e.g. SQLite) never starve concurrent request handling.
type WorkerPool struct {
	work      chan workItem
	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    chan struct{}
}

// NewWorkerPool creates a pool with the given number of workers
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = 4
	}

	p := &WorkerPool{
		work:   make(chan workItem),
		closed: make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case item := <-p.work:
			output, err := item.fn(item.ctx)
			item.result <- workResult{output: output, err: err}
		case <-p.closed:
			return
		}
	}
}

// Run executes fn on a pool worker and waits for its result. The caller's
// context governs how long we wait for a free worker; a dispatched fn
// always runs to completion.
func (p *WorkerPool) Run(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	item := workItem{
		ctx:    ctx,
		fn:     fn,
		result: make(chan workResult, 1),
	}

	select {
	case p.work <- item:
	case <-p.closed:
		return "", fmt.Errorf("worker pool is closed")
	case <-ctx.Done():
		return "", ctx.Err()
	}

	res := <-item.result
	return res.output, res.err
}

// Close stops accepting work and waits for in-flight handlers to finish.
// The work channel is never closed: a Run parked on submission observes
// the closed signal instead, so Close is safe alongside concurrent Runs.
func (p *WorkerPool) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	p.wg.Wait()
}
