package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		n, err := NewNode("a", 3, InputCompute())
		require.NoError(t, err)
		assert.Equal(t, "a", n.Name())
		assert.Equal(t, 3, n.Size())
		assert.Equal(t, []float64{0, 0, 0}, n.State())
	})

	t.Run("error cases", func(t *testing.T) {
		_, err := NewNode("", 3, InputCompute())
		assert.ErrorContains(t, err, "name must not be empty")

		_, err = NewNode("a", 0, InputCompute())
		assert.ErrorContains(t, err, "size must be positive")

		_, err = NewNode("a", 3, nil)
		assert.ErrorContains(t, err, "compute function is required")
	})
}

func TestNode_StepLifecycle(t *testing.T) {
	n, err := NewNode("a", 2, InputCompute())
	require.NoError(t, err)

	require.NoError(t, n.SetInput([]float64{1, 2}))
	n.BeginStep()

	// Pending starts from the injected external input.
	require.NoError(t, n.AddPending([]float64{0.5, 0.5}))
	require.NoError(t, n.Advance())

	assert.Equal(t, []float64{1.5, 2.5}, n.State())
	assert.Equal(t, []float64{0, 0}, n.PrevState(), "pre-step snapshot keeps the old state")

	// The next step re-seeds pending from external input; earlier
	// contributions do not leak across steps.
	n.BeginStep()
	require.NoError(t, n.Advance())
	assert.Equal(t, []float64{1, 2}, n.State())
	assert.Equal(t, []float64{1.5, 2.5}, n.PrevState())
}

func TestNode_SizeMismatches(t *testing.T) {
	n, err := NewNode("a", 2, InputCompute())
	require.NoError(t, err)

	assert.ErrorContains(t, n.SetInput([]float64{1}), "input size 1")
	assert.ErrorContains(t, n.AddPending([]float64{1, 2, 3}), "contribution size 3")
}

func TestNode_StateReturnsCopy(t *testing.T) {
	n, err := NewNode("a", 2, InputCompute())
	require.NoError(t, err)

	snapshot := n.State()
	snapshot[0] = 42
	assert.Equal(t, []float64{0, 0}, n.State())
}

func TestLeakyCompute(t *testing.T) {
	t.Run("plain integrator with no threshold", func(t *testing.T) {
		fn := LeakyCompute(0.5, 0, 0)
		out, err := fn([]float64{2}, []float64{1})
		require.NoError(t, err)
		assert.Equal(t, []float64{2}, out) // 0.5*2 + 1
	})

	t.Run("value above threshold restarts from reset", func(t *testing.T) {
		fn := LeakyCompute(0.5, 1.0, 0.25)
		out, err := fn([]float64{1.5}, []float64{0})
		require.NoError(t, err)
		assert.Equal(t, []float64{0.125}, out) // 0.5*0.25
	})
}
