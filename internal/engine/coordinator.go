package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vk/spikegridgo/internal/ctxlog"
	"github.com/vk/spikegridgo/internal/sim"
)

// Coordinator drives one simulation step through the four ordered phases.
// For each phase it builds the task set from the current graph state,
// submits it to the backend, blocks on the phase barrier, and merges the
// partial results into the graph before the next phase may start. A nil
// backend selects the sequential in-process path, which executes the same
// task sets in submission order.
type Coordinator struct {
	backend Backend
	timeout time.Duration

	// gen advances once per concurrent phase so Drain can tell this
	// phase's results apart from stragglers of an abandoned one.
	gen uint64
}

// NewCoordinator creates a coordinator over the given backend. timeout is
// the per-phase barrier deadline; zero disables it.
func NewCoordinator(backend Backend, timeout time.Duration) *Coordinator {
	return &Coordinator{backend: backend, timeout: timeout}
}

// RunStep executes the four phases of one timestep in strict order. On a
// task failure the step stops at the failing phase with a StepError that
// names every failed element; contributions already merged in that phase
// remain, and elements whose tasks never ran keep their pre-step values.
func (c *Coordinator) RunStep(ctx context.Context, g *sim.Graph, step int) (*StepReport, error) {
	logger := ctxlog.FromContext(ctx)
	report := &StepReport{Step: step}
	start := time.Now()

	g.BeginStep()

	for _, phase := range stepPhases {
		tasks := buildTasks(phase, g, step)
		phaseStart := time.Now()

		results, err := c.runPhase(ctx, tasks)
		if err != nil {
			return report, fmt.Errorf("phase %s: %w", phase, err)
		}
		mergeErr := mergePhase(phase, results)

		report.Phases = append(report.Phases, PhaseReport{
			Phase:    phase,
			Tasks:    len(tasks),
			Duration: time.Since(phaseStart),
		})
		if mergeErr != nil {
			return report, mergeErr
		}
		logger.Debug("Phase barrier released.", "step", step, "phase", phase.String(), "tasks", len(tasks))
	}

	report.Duration = time.Since(start)
	return report, nil
}

// buildTasks partitions the phase's workload into one task per graph
// element. Aggregate tasks carry an immutable snapshot of their source
// state, taken here before any worker can touch the graph.
func buildTasks(phase Phase, g *sim.Graph, step int) []*Task {
	var tasks []*Task
	switch phase {
	case PhaseAggregate:
		for _, e := range g.Connections() {
			tasks = append(tasks, &Task{Kind: PhaseAggregate, Element: e.Name(), Edge: e, Input: e.Source().State()})
		}
	case PhaseAdvance:
		for _, n := range g.Layers() {
			tasks = append(tasks, &Task{Kind: PhaseAdvance, Element: n.Name(), Node: n})
		}
	case PhaseLearn:
		if !g.Learning() {
			return nil
		}
		for _, e := range g.Connections() {
			if e.Learns() {
				tasks = append(tasks, &Task{Kind: PhaseLearn, Element: e.Name(), Edge: e})
			}
		}
	case PhaseRecord:
		for _, m := range g.Monitors() {
			tasks = append(tasks, &Task{Kind: PhaseRecord, Element: m.Name(), Monitor: m, Step: step})
		}
	}
	return tasks
}

// runPhase executes one phase's tasks to completion and returns their
// results. The error return covers infrastructure failures only (queue
// sizing, barrier deadline, context); task failures travel inside results.
func (c *Coordinator) runPhase(ctx context.Context, tasks []*Task) ([]*Result, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	if c.backend == nil {
		results := make([]*Result, 0, len(tasks))
		for _, t := range tasks {
			results = append(results, t.Execute())
		}
		return results, nil
	}

	c.gen++
	for _, t := range tasks {
		t.gen = c.gen
	}
	for _, t := range tasks {
		if err := c.backend.Submit(t); err != nil {
			return nil, fmt.Errorf("submitting task for %q: %w", t.Element, err)
		}
	}
	return c.backend.Results().Drain(ctx, len(tasks), c.gen, c.timeout)
}

// mergePhase folds the phase's partial results into the graph. Aggregate
// contributions are summed into their target's pending-input accumulator;
// summation is commutative, so the completion order across workers cannot
// change the outcome beyond float rounding. All failures of the phase are
// collected, not just the first.
func mergePhase(phase Phase, results []*Result) error {
	var failures []*TaskError
	for _, r := range results {
		if r.Err != nil {
			failures = append(failures, r.Err)
			continue
		}
		if r.Task.Kind == PhaseAggregate {
			if err := r.Task.Edge.Target().AddPending(r.Contribution); err != nil {
				failures = append(failures, &TaskError{Kind: phase, Element: r.Task.Element, Cause: err})
			}
		}
	}
	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool { return failures[i].Element < failures[j].Element })
		return &StepError{Phase: phase, Failures: failures}
	}
	return nil
}
