package engine

// Backend bounds concurrent task execution to a fixed worker budget. The
// worker pool and the throttled spawner are interchangeable implementations:
// from the coordinator's point of view they differ only in thread lifecycle
// cost, never in observable semantics.
type Backend interface {
	// Submit hands one task to the backend for execution. It returns
	// ErrQueueFull if the backend cannot accept the task and
	// ErrAlreadyStopped after Stop.
	Submit(t *Task) error

	// Results returns the completion channel shared by all workers.
	Results() *ResultChannel

	// Stop shuts the backend down, waiting for in-flight tasks to finish.
	// There is no mid-task cancellation; shutdown only prevents new tasks
	// from being picked up. A second call fails with ErrAlreadyStopped.
	Stop() error
}
