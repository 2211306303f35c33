package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrQueueFull is returned when a phase submits more tasks than the
	// configured queue capacity. The capacity must be sized to at least the
	// largest single-phase task count of the graph.
	ErrQueueFull = errors.New("work queue full")

	// ErrAlreadyStopped is returned by a second Stop or Shutdown call.
	ErrAlreadyStopped = errors.New("already stopped")

	// ErrEngineClosed is returned by RunStep after Shutdown.
	ErrEngineClosed = errors.New("engine closed")

	// ErrStepTimeout is returned when a phase barrier exceeds the configured
	// deadline before all of its tasks have reported completion.
	ErrStepTimeout = errors.New("phase barrier deadline exceeded")
)

// TaskError is a single collaborator failure, caught at the worker boundary
// and isolated to its task: it never terminates a worker or corrupts the
// queue.
type TaskError struct {
	Kind    Phase
	Element string
	Cause   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s task for %q failed: %v", e.Kind, e.Element, e.Cause)
}

func (e *TaskError) Unwrap() error { return e.Cause }

// StepError aborts a step. It aggregates every task failure of the phase in
// which the step failed, not just the first; partial results of tasks that
// completed in that phase remain merged, and elements whose tasks never ran
// keep their pre-step values.
type StepError struct {
	Phase    Phase
	Failures []*TaskError
}

func (e *StepError) Error() string {
	elements := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		elements[i] = f.Element
	}
	return fmt.Sprintf("step failed in phase %s: %d task(s) failed (%s): %v",
		e.Phase, len(e.Failures), strings.Join(elements, ", "), e.Failures[0].Cause)
}

// Unwrap exposes the individual task failures to errors.Is / errors.As.
func (e *StepError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f
	}
	return out
}
