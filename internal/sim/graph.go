// Package sim holds the data model of the simulation graph: node layers,
// weighted connections between them, and monitors observing them. The model
// is deliberately free of concurrency concerns; the engine package owns all
// scheduling and guarantees that each element is written by at most one task
// per phase.
package sim

import "fmt"

// Graph is the simulation topology. Elements are added once at setup and
// persist for the lifetime of the simulation.
type Graph struct {
	layers     []*Node
	layerIndex map[string]*Node

	connections []*Edge
	monitors    []*Monitor

	learning bool
}

// NewGraph creates an empty graph with learning enabled.
func NewGraph() *Graph {
	return &Graph{
		layerIndex: make(map[string]*Node),
		learning:   true,
	}
}

// AddLayer registers a node layer under its name.
func (g *Graph) AddLayer(n *Node) error {
	if _, exists := g.layerIndex[n.Name()]; exists {
		return fmt.Errorf("layer %q already exists", n.Name())
	}
	g.layers = append(g.layers, n)
	g.layerIndex[n.Name()] = n
	return nil
}

// Layer looks up a layer by name.
func (g *Graph) Layer(name string) (*Node, bool) {
	n, ok := g.layerIndex[name]
	return n, ok
}

// AddConnection registers an edge. Both endpoints must already be layers of
// this graph; edges hold shared references and never own their nodes.
func (g *Graph) AddConnection(e *Edge) error {
	for _, end := range []*Node{e.Source(), e.Target()} {
		if existing, ok := g.layerIndex[end.Name()]; !ok || existing != end {
			return fmt.Errorf("connection %q: layer %q is not part of the graph", e.Name(), end.Name())
		}
	}
	g.connections = append(g.connections, e)
	return nil
}

// AddMonitor registers a monitor.
func (g *Graph) AddMonitor(m *Monitor) error {
	if existing, ok := g.layerIndex[m.Layer().Name()]; !ok || existing != m.Layer() {
		return fmt.Errorf("monitor %q: layer %q is not part of the graph", m.Name(), m.Layer().Name())
	}
	g.monitors = append(g.monitors, m)
	return nil
}

// Layers returns the layers in insertion order.
func (g *Graph) Layers() []*Node { return g.layers }

// Connections returns the edges in insertion order.
func (g *Graph) Connections() []*Edge { return g.connections }

// Monitors returns the registered monitors.
func (g *Graph) Monitors() []*Monitor { return g.monitors }

// SetLearning toggles the update-weights phase for the whole graph.
func (g *Graph) SetLearning(on bool) { g.learning = on }

// Learning reports whether connections update their weights each step.
func (g *Graph) Learning() bool { return g.learning }

// BeginStep prepares every layer for a new timestep: pre-step states are
// snapshotted and pending-input accumulators are re-seeded from the injected
// external inputs.
func (g *Graph) BeginStep() {
	for _, n := range g.layers {
		n.BeginStep()
	}
}

// Normalize rescales all connections that carry a normalization target.
// Called once after a run, matching the step loop's contract that weights
// only change during the update-weights phase.
func (g *Graph) Normalize() {
	for _, e := range g.connections {
		e.Normalize()
	}
}

// ResetState zeroes the state of every layer and discards monitor records.
func (g *Graph) ResetState() {
	for _, n := range g.layers {
		n.Reset()
	}
	for _, m := range g.monitors {
		m.Reset()
	}
}
