package sim

import "fmt"

// ContributeFn maps a source layer's state snapshot to the contribution this
// connection delivers to its target layer.
type ContributeFn func(source []float64) ([]float64, error)

// LearnFn produces updated weights from the source's pre-step state, the
// target's post-update state and the current weights. It must return a fresh
// matrix rather than mutating its argument.
type LearnFn func(pre, post []float64, weights [][]float64) ([][]float64, error)

// Edge is a weighted connection between two layers. It holds a shared
// reference to its source and target nodes; it never owns them.
type Edge struct {
	name    string
	source  *Node
	target  *Node
	weights [][]float64 // [source.Size()][target.Size()]

	contribute  ContributeFn
	learn       LearnFn
	normalizeTo float64 // target column sum after a run; 0 disables
}

// EdgeOption customizes a connection at construction time.
type EdgeOption func(*Edge)

// WithContributeFn replaces the default dense matrix-vector contribution.
func WithContributeFn(fn ContributeFn) EdgeOption {
	return func(e *Edge) { e.contribute = fn }
}

// WithLearnFn makes the connection eligible for the update-weights phase.
func WithLearnFn(fn LearnFn) EdgeOption {
	return func(e *Edge) { e.learn = fn }
}

// WithNormalizeTo sets the per-target-unit weight sum restored after a run.
func WithNormalizeTo(sum float64) EdgeOption {
	return func(e *Edge) { e.normalizeTo = sum }
}

// NewEdge creates a connection from source to target with the given weight
// matrix, validating that the matrix dimensions match the two layers.
func NewEdge(name string, source, target *Node, weights [][]float64, opts ...EdgeOption) (*Edge, error) {
	if source == nil || target == nil {
		return nil, fmt.Errorf("connection %q: source and target are required", name)
	}
	if len(weights) != source.Size() {
		return nil, fmt.Errorf("connection %q: weight rows %d do not match source %q size %d",
			name, len(weights), source.Name(), source.Size())
	}
	for i, row := range weights {
		if len(row) != target.Size() {
			return nil, fmt.Errorf("connection %q: weight row %d has %d columns, target %q size is %d",
				name, i, len(row), target.Name(), target.Size())
		}
	}

	e := &Edge{
		name:    name,
		source:  source,
		target:  target,
		weights: weights,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Name returns the connection's logical name.
func (e *Edge) Name() string { return e.name }

// Source returns the connection's source layer.
func (e *Edge) Source() *Node { return e.source }

// Target returns the connection's target layer.
func (e *Edge) Target() *Node { return e.target }

// Learns reports whether the connection participates in the update-weights
// phase.
func (e *Edge) Learns() bool { return e.learn != nil }

// Weights returns a copy of the weight matrix.
func (e *Edge) Weights() [][]float64 {
	out := make([][]float64, len(e.weights))
	for i, row := range e.weights {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// Contribute computes the connection's contribution to its target from a
// snapshot of the source state. The default is the dense product sᵀ·W.
func (e *Edge) Contribute(source []float64) ([]float64, error) {
	if len(source) != e.source.Size() {
		return nil, fmt.Errorf("connection %q: source snapshot size %d, want %d", e.name, len(source), e.source.Size())
	}
	if e.contribute != nil {
		return e.contribute(source)
	}

	out := make([]float64, e.target.Size())
	for i, s := range source {
		if s == 0 {
			continue
		}
		row := e.weights[i]
		for j, w := range row {
			out[j] += s * w
		}
	}
	return out, nil
}

// Learn applies the connection's learning rule using the source's pre-step
// state and the target's post-update state. Exactly one task per step calls
// this for a given connection.
func (e *Edge) Learn() error {
	if e.learn == nil {
		return nil
	}
	next, err := e.learn(e.source.PrevState(), e.target.State(), e.weights)
	if err != nil {
		return err
	}
	if len(next) != len(e.weights) {
		return fmt.Errorf("connection %q: learning rule returned %d rows, want %d", e.name, len(next), len(e.weights))
	}
	e.weights = next
	return nil
}

// Normalize rescales the weights so that the incoming weights of each target
// unit sum to the configured value. A zero configuration is a no-op.
func (e *Edge) Normalize() {
	if e.normalizeTo == 0 {
		return
	}
	for j := 0; j < e.target.Size(); j++ {
		var sum float64
		for i := range e.weights {
			sum += e.weights[i][j]
		}
		if sum == 0 {
			continue
		}
		scale := e.normalizeTo / sum
		for i := range e.weights {
			e.weights[i][j] *= scale
		}
	}
}
