package engine

import (
	"sync"
	"sync/atomic"
)

// ThrottledSpawner is the pool-less backend: each task runs on its own
// short-lived goroutine, admitted through a counting gate that caps
// concurrent execution at the worker budget. Submit blocks while the gate is
// full and unblocks as running tasks finish, replacing the join-polling of
// spawn-per-task designs with semaphore admission.
type ThrottledSpawner struct {
	gate    chan struct{}
	results *ResultChannel

	wg      sync.WaitGroup
	stopped atomic.Bool
}

// NewThrottledSpawner creates a spawner admitting at most limit concurrent
// tasks, with a completion buffer of capacity results.
func NewThrottledSpawner(limit, capacity int) *ThrottledSpawner {
	return &ThrottledSpawner{
		gate:    make(chan struct{}, limit),
		results: NewResultChannel(capacity),
	}
}

// Submit blocks the caller until fewer than the limit of tasks are running,
// then spawns a goroutine for the task and returns immediately.
func (s *ThrottledSpawner) Submit(t *Task) error {
	if s.stopped.Load() {
		return ErrAlreadyStopped
	}
	s.gate <- struct{}{}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.gate }()
		s.results.Publish(t.Execute())
	}()
	return nil
}

// Results returns the spawner's completion channel.
func (s *ThrottledSpawner) Results() *ResultChannel { return s.results }

// Stop joins every submitted-and-not-yet-finished task.
func (s *ThrottledSpawner) Stop() error {
	if s.stopped.Swap(true) {
		return ErrAlreadyStopped
	}
	s.wg.Wait()
	return nil
}
