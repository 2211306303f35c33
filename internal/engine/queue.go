package engine

import "sync"

// WorkQueue is a bounded, thread-safe FIFO of pending tasks. Enqueue never
// blocks: a full queue is a caller sizing error surfaced as ErrQueueFull.
type WorkQueue struct {
	tasks     chan *Task
	closeOnce sync.Once
}

// NewWorkQueue creates a queue holding at most capacity pending tasks.
func NewWorkQueue(capacity int) *WorkQueue {
	return &WorkQueue{tasks: make(chan *Task, capacity)}
}

// Enqueue adds a task without blocking, failing with ErrQueueFull when the
// capacity bound is exceeded.
func (q *WorkQueue) Enqueue(t *Task) error {
	select {
	case q.tasks <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue blocks the calling worker until a task is available or the queue
// has been closed for shutdown, in which case ok is false. Closing the
// channel is the shutdown sentinel: each worker's receive observes it
// exactly once.
func (q *WorkQueue) Dequeue() (t *Task, ok bool) {
	t, ok = <-q.tasks
	return t, ok
}

// Close signals shutdown to all workers. Safe to call more than once;
// pending tasks already enqueued are still drained before workers exit.
func (q *WorkQueue) Close() {
	q.closeOnce.Do(func() { close(q.tasks) })
}
