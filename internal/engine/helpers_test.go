package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/spikegridgo/internal/ctxlog"
	"github.com/vk/spikegridgo/internal/sim"
)

// testContext returns a context carrying a discard logger, matching what
// the application wires up before starting an engine.
func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func mustLayer(t *testing.T, g *sim.Graph, name string, size int, fn sim.ComputeFn) *sim.Node {
	t.Helper()
	n, err := sim.NewNode(name, size, fn)
	require.NoError(t, err)
	require.NoError(t, g.AddLayer(n))
	return n
}

// identityFn advances a layer to exactly its aggregated input.
func identityFn(_, input []float64) ([]float64, error) {
	out := make([]float64, len(input))
	copy(out, input)
	return out, nil
}

// observeTask builds a record task whose work is the given observer. It is
// the cheapest way to push arbitrary work through a backend in tests.
func observeTask(t *testing.T, name string, fn sim.ObserveFn) *Task {
	t.Helper()
	node, err := sim.NewNode(name+"_layer", 1, sim.InputCompute())
	require.NoError(t, err)
	return &Task{Kind: PhaseRecord, Element: name, Monitor: sim.NewMonitor(name, node, fn)}
}

// twoNodeGraph wires src -> dst through a single connection with the given
// weight and seeds the source state to 1.0.
func twoNodeGraph(t *testing.T, weight float64) *sim.Graph {
	t.Helper()

	g := sim.NewGraph()
	src := mustLayer(t, g, "src", 1, sim.InputCompute())
	dst := mustLayer(t, g, "dst", 1, identityFn)

	e, err := sim.NewEdge("src_to_dst", src, dst, [][]float64{{weight}})
	require.NoError(t, err)
	require.NoError(t, g.AddConnection(e))

	require.NoError(t, src.SetState([]float64{1.0}))
	return g
}
