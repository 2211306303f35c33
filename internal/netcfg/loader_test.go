package netcfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/spikegridgo/internal/engine"
)

const fullNetwork = `
layer "input" {
  size       = 2
  kind       = "input"
  input_rate = 0.4
}

layer "hidden" {
  size      = 3
  kind      = "leaky"
  decay     = 0.9
  threshold = 1.0
  reset     = 0.1
}

layer "output" {
  size = 1
}

connection "input" "hidden" {
  weights = [[0.1, 0.2, 0.3], [0.4, 0.5, 0.6]]
  rule    = "hebbian"
  rate    = 0.05
  w_max   = 1.0
}

connection "hidden" "output" {
  fill      = 0.5
  normalize = 1.5
}

monitor "spikes" {
  layer = "output"
}

engine {
  workers      = 4
  strategy     = "spawn"
  step_timeout = "250ms"
}
`

func TestParseBytes_FullNetwork(t *testing.T) {
	net, err := ParseBytes([]byte(fullNetwork), "network.hcl")
	require.NoError(t, err)

	// Layers in declaration order.
	layers := net.Graph.Layers()
	require.Len(t, layers, 3)
	assert.Equal(t, "input", layers[0].Name())
	assert.Equal(t, 2, layers[0].Size())
	assert.Equal(t, "hidden", layers[1].Name())
	assert.Equal(t, 3, layers[1].Size())

	conns := net.Graph.Connections()
	require.Len(t, conns, 2)
	assert.Equal(t, "input_to_hidden", conns[0].Name())
	assert.True(t, conns[0].Learns())
	if diff := cmp.Diff([][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}, conns[0].Weights()); diff != "" {
		t.Errorf("explicit weights mismatch:\n%s", diff)
	}

	assert.Equal(t, "hidden_to_output", conns[1].Name())
	assert.False(t, conns[1].Learns())
	if diff := cmp.Diff([][]float64{{0.5}, {0.5}, {0.5}}, conns[1].Weights()); diff != "" {
		t.Errorf("fill weights mismatch:\n%s", diff)
	}

	require.Len(t, net.Graph.Monitors(), 1)
	assert.Equal(t, "spikes", net.Graph.Monitors()[0].Name())

	assert.Equal(t, map[string]InputSpec{
		"input": {Encoding: "bernoulli", Rate: 0.4},
	}, net.Inputs)

	want := engine.Config{Workers: 4, Strategy: engine.StrategySpawner, StepTimeout: 250 * time.Millisecond}
	assert.Equal(t, want, net.Engine)
}

func TestParseBytes_DefaultsWithoutEngineBlock(t *testing.T) {
	net, err := ParseBytes([]byte(`
layer "a" {
  size = 1
}
`), "minimal.hcl")
	require.NoError(t, err)

	assert.Equal(t, engine.Config{}, net.Engine)
	assert.Empty(t, net.Inputs)
}

func TestParseBytes_InputEncodings(t *testing.T) {
	net, err := ParseBytes([]byte(`
layer "ticker" {
  size           = 1
  input_encoding = "regular"
  input_period   = 4
}

layer "bias" {
  size           = 2
  input_encoding = "constant"
  input_value    = 0.75
}

layer "silent" {
  size = 1
}
`), "encodings.hcl")
	require.NoError(t, err)

	assert.Equal(t, map[string]InputSpec{
		"ticker": {Encoding: "regular", Period: 4},
		"bias":   {Encoding: "constant", Value: 0.75},
	}, net.Inputs)
}

func TestParseBytes_Errors(t *testing.T) {
	cases := map[string]struct {
		src     string
		wantErr string
	}{
		"unknown layer kind": {
			src: `
layer "a" {
  size = 1
  kind = "spiking-gpu"
}
`,
			wantErr: `unknown kind "spiking-gpu"`,
		},
		"unknown connection source": {
			src: `
layer "a" { size = 1 }
connection "ghost" "a" { fill = 1 }
`,
			wantErr: `unknown source layer "ghost"`,
		},
		"unknown learning rule": {
			src: `
layer "a" { size = 1 }
layer "b" { size = 1 }
connection "a" "b" { rule = "stdp-exotic" }
`,
			wantErr: `unknown rule "stdp-exotic"`,
		},
		"weight shape mismatch": {
			src: `
layer "a" { size = 2 }
layer "b" { size = 1 }
connection "a" "b" { weights = [[0.5]] }
`,
			wantErr: "weight rows 1 do not match",
		},
		"unknown input encoding": {
			src: `
layer "a" {
  size           = 1
  input_encoding = "poisson"
}
`,
			wantErr: `unknown input_encoding "poisson"`,
		},
		"regular encoding without period": {
			src: `
layer "a" {
  size           = 1
  input_encoding = "regular"
}
`,
			wantErr: "needs a positive input_period",
		},
		"monitor over unknown layer": {
			src:     `monitor "m" { layer = "nope" }`,
			wantErr: `unknown layer "nope"`,
		},
		"invalid strategy": {
			src: `
layer "a" { size = 1 }
engine { strategy = "forkjoin" }
`,
			wantErr: "invalid strategy",
		},
		"invalid step timeout": {
			src: `
layer "a" { size = 1 }
engine { step_timeout = "soon" }
`,
			wantErr: "step_timeout",
		},
		"syntax error": {
			src:     `layer "a" {`,
			wantErr: "parsing",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tc.src), name+".hcl")
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoad_MergesDirectoryFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layers.hcl"), []byte(`
layer "a" { size = 1 }
layer "b" { size = 1 }
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wiring.hcl"), []byte(`
connection "a" "b" { fill = 0.25 }
engine { workers = 2 }
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	net, err := Load(dir)
	require.NoError(t, err)

	assert.Len(t, net.Graph.Layers(), 2)
	require.Len(t, net.Graph.Connections(), 1)
	assert.Equal(t, "a_to_b", net.Graph.Connections()[0].Name())
	assert.Equal(t, 2, net.Engine.Workers)
}

func TestLoad_SingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`layer "solo" { size = 4 }`), 0o644))

	net, err := Load(path)
	require.NoError(t, err)
	require.Len(t, net.Graph.Layers(), 1)
	assert.Equal(t, 4, net.Graph.Layers()[0].Size())
}

func TestLoad_RejectsDuplicateEngineBlocks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.hcl"), []byte(`
layer "a" { size = 1 }
engine { workers = 1 }
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.hcl"), []byte(`
engine { workers = 2 }
`), 0o644))

	_, err := Load(dir)
	require.ErrorContains(t, err, "duplicate engine block")
}

func TestLoad_NoFiles(t *testing.T) {
	_, err := Load(t.TempDir())
	require.ErrorContains(t, err, "no .hcl network files")
}
