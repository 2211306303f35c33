package engine

import (
	"fmt"

	"github.com/vk/spikegridgo/internal/sim"
)

// Phase identifies one of the four ordered stages of a simulation step. It
// doubles as the task kind: every task belongs to exactly one phase.
type Phase int

const (
	// PhaseAggregate computes each connection's contribution from its
	// source layer and sums it into the target's pending-input accumulator.
	PhaseAggregate Phase = iota
	// PhaseAdvance replaces each layer's state from its accumulated input.
	PhaseAdvance
	// PhaseLearn applies each eligible connection's weight-update rule.
	PhaseLearn
	// PhaseRecord captures post-update snapshots for every monitor.
	PhaseRecord
)

func (p Phase) String() string {
	switch p {
	case PhaseAggregate:
		return "aggregate-input"
	case PhaseAdvance:
		return "advance-state"
	case PhaseLearn:
		return "update-weights"
	case PhaseRecord:
		return "record"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// stepPhases is the barrier order of one step.
var stepPhases = [...]Phase{PhaseAggregate, PhaseAdvance, PhaseLearn, PhaseRecord}

// Task is one atomic unit of phase work targeting a single graph element.
// Exactly one of Edge, Node or Monitor is set, matching Kind. Tasks are
// created fresh for each phase and never mutated after submission.
type Task struct {
	Kind    Phase
	Element string

	Edge    *sim.Edge
	Node    *sim.Node
	Monitor *sim.Monitor

	// Input is the payload of an aggregate task: a snapshot of the source
	// layer's state taken before the phase was submitted.
	Input []float64
	// Step is the timestep number, carried for record tasks.
	Step int

	// gen tags the task with its phase generation so the coordinator can
	// discard stragglers from a timed-out phase.
	gen uint64
}

// Execute runs the task's computation and reports it as a Result. Both
// collaborator errors and panics are converted into a failed Result, so a
// worker never dies with its task.
func (t *Task) Execute() (res *Result) {
	res = &Result{Task: t, gen: t.gen}
	defer func() {
		if r := recover(); r != nil {
			res.Err = &TaskError{Kind: t.Kind, Element: t.Element, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	var err error
	switch t.Kind {
	case PhaseAggregate:
		res.Contribution, err = t.Edge.Contribute(t.Input)
	case PhaseAdvance:
		err = t.Node.Advance()
	case PhaseLearn:
		err = t.Edge.Learn()
	case PhaseRecord:
		err = t.Monitor.Record(t.Step)
	default:
		err = fmt.Errorf("unknown task kind %d", int(t.Kind))
	}
	if err != nil {
		res.Err = &TaskError{Kind: t.Kind, Element: t.Element, Cause: err}
	}
	return res
}
