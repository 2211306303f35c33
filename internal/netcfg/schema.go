package netcfg

import "github.com/hashicorp/hcl/v2"

// networkFile is the top-level structure of one network definition file.
type networkFile struct {
	Layers      []*layerBlock      `hcl:"layer,block"`
	Connections []*connectionBlock `hcl:"connection,block"`
	Monitors    []*monitorBlock    `hcl:"monitor,block"`
	Engine      *engineBlock       `hcl:"engine,block"`
}

// layerBlock declares one node layer.
type layerBlock struct {
	Name string `hcl:"name,label"`
	Size int    `hcl:"size"`
	// Kind selects the built-in update rule: input, identity or leaky.
	// Defaults to identity.
	Kind string `hcl:"kind,optional"`

	Decay     hcl.Expression `hcl:"decay,optional"`
	Threshold hcl.Expression `hcl:"threshold,optional"`
	Reset     hcl.Expression `hcl:"reset,optional"`

	// InputEncoding selects how the driver injects external input each
	// step: bernoulli (default), regular or constant. Layers declaring
	// neither an encoding nor a rate receive no external input.
	InputEncoding string         `hcl:"input_encoding,optional"`
	InputRate     hcl.Expression `hcl:"input_rate,optional"`
	InputPeriod   hcl.Expression `hcl:"input_period,optional"`
	InputValue    hcl.Expression `hcl:"input_value,optional"`
}

// connectionBlock declares one weighted edge between two layers.
type connectionBlock struct {
	Source string `hcl:"source,label"`
	Target string `hcl:"target,label"`

	// Weights is an explicit [source_size][target_size] matrix. When
	// absent, Fill seeds every weight with one scalar.
	Weights hcl.Expression `hcl:"weights,optional"`
	Fill    hcl.Expression `hcl:"fill,optional"`

	// Rule enables learning on this connection; "hebbian" is built in.
	Rule      string         `hcl:"rule,optional"`
	Rate      hcl.Expression `hcl:"rate,optional"`
	WMax      hcl.Expression `hcl:"w_max,optional"`
	Normalize hcl.Expression `hcl:"normalize,optional"`
}

// monitorBlock declares an observer over one layer.
type monitorBlock struct {
	Name  string `hcl:"name,label"`
	Layer string `hcl:"layer"`
}

// engineBlock carries execution defaults for the network; CLI flags
// override every field.
type engineBlock struct {
	Workers       int    `hcl:"workers,optional"`
	Strategy      string `hcl:"strategy,optional"`
	QueueCapacity int    `hcl:"queue_capacity,optional"`
	StepTimeout   string `hcl:"step_timeout,optional"`
}
