package engine

import "time"

// PhaseReport carries per-phase timing and task counts for observability.
type PhaseReport struct {
	Phase    Phase
	Tasks    int
	Duration time.Duration
}

// StepReport summarizes one completed step.
type StepReport struct {
	Step     int
	Duration time.Duration
	Phases   []PhaseReport
}

// TaskCount returns the total number of tasks executed across all phases.
func (r *StepReport) TaskCount() int {
	var total int
	for _, p := range r.Phases {
		total += p.Tasks
	}
	return total
}
