// Package netcfg loads declarative HCL network definitions and translates
// them into a simulation graph plus engine defaults.
package netcfg

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/spikegridgo/internal/engine"
	"github.com/vk/spikegridgo/internal/fsutil"
	"github.com/vk/spikegridgo/internal/sim"
)

// InputSpec describes how the driver generates external input for one
// layer each step.
type InputSpec struct {
	// Encoding is one of "bernoulli", "regular" or "constant".
	Encoding string
	// Rate is the per-unit firing probability of a bernoulli encoding.
	Rate float64
	// Period is the step spacing of a regular encoding.
	Period int
	// Value is the level of a constant encoding.
	Value float64
}

// Network is the fully translated result of loading a definition path.
type Network struct {
	Graph  *sim.Graph
	Engine engine.Config

	// Inputs maps layer names to their external input encodings; layers
	// without an entry receive no external input.
	Inputs map[string]InputSpec
}

// Load discovers every .hcl file under path (a single file or a directory),
// parses them, and translates the merged blocks into a Network.
func Load(path string) (*Network, error) {
	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("discovering network files under %q: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl network files found under %q", path)
	}

	merged := &networkFile{}
	parser := hclparse.NewParser()
	for _, name := range files {
		f, diags := parser.ParseHCLFile(name)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %q: %w", name, diags)
		}
		var nf networkFile
		if diags := gohcl.DecodeBody(f.Body, nil, &nf); diags.HasErrors() {
			return nil, fmt.Errorf("decoding %q: %w", name, diags)
		}
		merged.Layers = append(merged.Layers, nf.Layers...)
		merged.Connections = append(merged.Connections, nf.Connections...)
		merged.Monitors = append(merged.Monitors, nf.Monitors...)
		if nf.Engine != nil {
			if merged.Engine != nil {
				return nil, fmt.Errorf("decoding %q: duplicate engine block", name)
			}
			merged.Engine = nf.Engine
		}
	}

	return merged.translate()
}

// ParseBytes loads a network from in-memory HCL source. Used by tests and
// embedded definitions.
func ParseBytes(src []byte, filename string) (*Network, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %q: %w", filename, diags)
	}
	var nf networkFile
	if diags := gohcl.DecodeBody(f.Body, nil, &nf); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %q: %w", filename, diags)
	}
	return nf.translate()
}
