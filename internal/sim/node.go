package sim

import "fmt"

// ComputeFn advances a layer's state vector given the input accumulated for
// the current timestep. It must not retain either slice.
type ComputeFn func(state, input []float64) ([]float64, error)

// Node is one layer of the simulation graph: a named state vector plus the
// update function that advances it each timestep.
//
// A Node carries three vectors with distinct lifetimes:
//   - state: the persistent output of the layer, written by exactly one
//     advance task per step.
//   - prev: a snapshot of state taken at the start of the step, read by
//     learning rules as the pre-update value.
//   - pending: the input accumulator for the current step, rebuilt every
//     step from the injected external input plus connection contributions.
type Node struct {
	name    string
	size    int
	compute ComputeFn

	state    []float64
	prev     []float64
	pending  []float64
	external []float64
}

// NewNode creates a layer of the given size. The compute function is required;
// built-in update rules live alongside this type (InputCompute, LeakyCompute).
func NewNode(name string, size int, compute ComputeFn) (*Node, error) {
	if name == "" {
		return nil, fmt.Errorf("node name must not be empty")
	}
	if size <= 0 {
		return nil, fmt.Errorf("node %q: size must be positive, got %d", name, size)
	}
	if compute == nil {
		return nil, fmt.Errorf("node %q: compute function is required", name)
	}
	return &Node{
		name:     name,
		size:     size,
		compute:  compute,
		state:    make([]float64, size),
		prev:     make([]float64, size),
		pending:  make([]float64, size),
		external: make([]float64, size),
	}, nil
}

// Name returns the layer's logical name.
func (n *Node) Name() string { return n.name }

// Size returns the length of the layer's state vector.
func (n *Node) Size() int { return n.size }

// State returns a copy of the current state vector. Copying keeps snapshots
// taken by the coordinator immutable while workers run.
func (n *Node) State() []float64 {
	out := make([]float64, n.size)
	copy(out, n.state)
	return out
}

// PrevState returns a copy of the state vector as it was at the start of the
// current step.
func (n *Node) PrevState() []float64 {
	out := make([]float64, n.size)
	copy(out, n.prev)
	return out
}

// SetState overwrites the layer's state vector. Intended for simulation
// setup; during a run the state is owned by the advance-state phase.
func (n *Node) SetState(x []float64) error {
	if len(x) != n.size {
		return fmt.Errorf("node %q: state size %d does not match layer size %d", n.name, len(x), n.size)
	}
	copy(n.state, x)
	return nil
}

// SetInput injects an external input vector for the next step. It is added to
// the pending-input accumulator when the step begins.
func (n *Node) SetInput(x []float64) error {
	if len(x) != n.size {
		return fmt.Errorf("node %q: input size %d does not match layer size %d", n.name, len(x), n.size)
	}
	copy(n.external, x)
	return nil
}

// BeginStep snapshots the pre-step state and seeds the pending accumulator
// with the injected external input. Called once per step by the coordinator,
// before any phase tasks are submitted.
func (n *Node) BeginStep() {
	copy(n.prev, n.state)
	copy(n.pending, n.external)
}

// AddPending sums a connection's contribution into the pending-input
// accumulator. Summation is commutative, so the merge order across
// connections does not affect the result beyond float rounding.
func (n *Node) AddPending(contribution []float64) error {
	if len(contribution) != n.size {
		return fmt.Errorf("node %q: contribution size %d does not match layer size %d", n.name, len(contribution), n.size)
	}
	for i, v := range contribution {
		n.pending[i] += v
	}
	return nil
}

// Advance replaces the state vector with the output of the update function
// applied to the accumulated input. Exactly one task per step calls this.
func (n *Node) Advance() error {
	next, err := n.compute(n.state, n.pending)
	if err != nil {
		return err
	}
	if len(next) != n.size {
		return fmt.Errorf("node %q: compute returned size %d, want %d", n.name, len(next), n.size)
	}
	copy(n.state, next)
	return nil
}

// Reset zeroes all of the layer's vectors.
func (n *Node) Reset() {
	for _, v := range [][]float64{n.state, n.prev, n.pending, n.external} {
		for i := range v {
			v[i] = 0
		}
	}
}
