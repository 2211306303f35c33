package engine

import (
	"context"
	"time"
)

// Result reports the completion of one task: either a contribution vector
// (aggregate tasks), a side effect already applied (all other kinds), or a
// failure isolated to that task.
type Result struct {
	Task         *Task
	Contribution []float64
	Err          *TaskError

	gen uint64
}

// ResultChannel is the multi-producer, single-consumer channel workers use
// to report completion back to the coordinator.
type ResultChannel struct {
	ch chan *Result
}

// NewResultChannel creates a channel buffered for capacity in-flight
// results. The buffer must cover the largest single-phase task count so a
// straggler from a timed-out phase can never block a worker.
func NewResultChannel(capacity int) *ResultChannel {
	return &ResultChannel{ch: make(chan *Result, capacity)}
}

// Publish reports one completed task. Safe for concurrent use by any number
// of workers.
func (rc *ResultChannel) Publish(r *Result) {
	rc.ch <- r
}

// Drain blocks the coordinator until exactly expected results of the given
// phase generation have been published, then returns them in completion
// order. Results carrying a stale generation are stragglers from an
// abandoned phase and are discarded. A positive timeout bounds the wait,
// failing with ErrStepTimeout; the results gathered so far are returned
// alongside the error.
func (rc *ResultChannel) Drain(ctx context.Context, expected int, gen uint64, timeout time.Duration) ([]*Result, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	out := make([]*Result, 0, expected)
	for len(out) < expected {
		select {
		case r := <-rc.ch:
			if r.gen != gen {
				continue
			}
			out = append(out, r)
		case <-deadline:
			return out, ErrStepTimeout
		case <-ctx.Done():
			return out, ctx.Err()
		}
	}
	return out, nil
}
