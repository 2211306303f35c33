package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vk/spikegridgo/internal/ctxlog"
)

// WorkerPool is the persistent-worker backend: N long-lived goroutines
// repeatedly pull a task from the shared queue, execute it, and publish the
// outcome. At most N tasks execute concurrently by construction, one per
// worker, regardless of how many tasks are queued.
type WorkerPool struct {
	queue   *WorkQueue
	results *ResultChannel
	workers int

	wg      sync.WaitGroup
	stopped atomic.Bool
}

// NewWorkerPool creates a pool of the given size over a queue bounded to
// capacity pending tasks. Call Start before submitting.
func NewWorkerPool(workers, capacity int) *WorkerPool {
	return &WorkerPool{
		queue:   NewWorkQueue(capacity),
		results: NewResultChannel(capacity),
		workers: workers,
	}
}

// Start launches the workers. The context carries the logger used by the
// worker loops; it is not a cancellation signal, shutdown goes through Stop.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// worker is the core processing loop for a single concurrent worker.
func (p *WorkerPool) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()
	logger := ctxlog.FromContext(ctx).With("workerID", workerID)
	logger.Debug("Worker started.")

	for {
		task, ok := p.queue.Dequeue()
		if !ok {
			break
		}
		logger.Debug("Worker picked up task.", "kind", task.Kind.String(), "element", task.Element)
		res := task.Execute()
		if res.Err != nil {
			logger.Debug("Task failed.", "kind", task.Kind.String(), "element", task.Element, "error", res.Err)
		}
		p.results.Publish(res)
	}
	logger.Debug("Worker finished.")
}

// Submit enqueues one task for the next free worker.
func (p *WorkerPool) Submit(t *Task) error {
	if p.stopped.Load() {
		return ErrAlreadyStopped
	}
	return p.queue.Enqueue(t)
}

// Results returns the pool's completion channel.
func (p *WorkerPool) Results() *ResultChannel { return p.results }

// Stop closes the queue and joins all workers. Tasks already enqueued are
// drained first.
func (p *WorkerPool) Stop() error {
	if p.stopped.Swap(true) {
		return ErrAlreadyStopped
	}
	p.queue.Close()
	p.wg.Wait()
	return nil
}
