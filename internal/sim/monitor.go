package sim

import "sync"

// Snapshot is the element state handed to an observer during the record
// phase. The state slice is a copy and safe to retain.
type Snapshot struct {
	Step  int
	Layer string
	State []float64
}

// ObserveFn receives one snapshot per step for the monitored layer.
type ObserveFn func(Snapshot) error

// Monitor observes one layer. With a nil ObserveFn it records snapshots
// in memory; otherwise each snapshot is forwarded to the observer.
type Monitor struct {
	name    string
	node    *Node
	observe ObserveFn

	mu      sync.Mutex
	records []Snapshot
}

// NewMonitor creates a monitor for the given layer. fn may be nil, in which
// case snapshots accumulate in memory and are available via Records.
func NewMonitor(name string, node *Node, fn ObserveFn) *Monitor {
	return &Monitor{name: name, node: node, observe: fn}
}

// Name returns the monitor's logical name.
func (m *Monitor) Name() string { return m.name }

// Layer returns the monitored layer.
func (m *Monitor) Layer() *Node { return m.node }

// Record captures the layer's post-update state for the given step. The
// record phase runs after all state and weight updates have completed, so
// the snapshot reflects the step's final values.
func (m *Monitor) Record(step int) error {
	snap := Snapshot{Step: step, Layer: m.node.Name(), State: m.node.State()}
	if m.observe != nil {
		return m.observe(snap)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, snap)
	return nil
}

// Records returns the snapshots captured so far.
func (m *Monitor) Records() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Snapshot, len(m.records))
	copy(out, m.records)
	return out
}

// Reset discards all recorded snapshots.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
}
