package netcfg

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/spikegridgo/internal/engine"
	"github.com/vk/spikegridgo/internal/sim"
)

// translate converts the merged HCL blocks into the runtime model,
// validating names, dimensions and rule parameters as it goes.
func (nf *networkFile) translate() (*Network, error) {
	net := &Network{
		Graph:  sim.NewGraph(),
		Inputs: make(map[string]InputSpec),
	}

	for _, lb := range nf.Layers {
		compute, err := lb.computeFn()
		if err != nil {
			return nil, err
		}
		node, err := sim.NewNode(lb.Name, lb.Size, compute)
		if err != nil {
			return nil, err
		}
		if err := net.Graph.AddLayer(node); err != nil {
			return nil, err
		}
		spec, ok, err := lb.inputSpec()
		if err != nil {
			return nil, err
		}
		if ok {
			net.Inputs[lb.Name] = spec
		}
	}

	for _, cb := range nf.Connections {
		edge, err := cb.build(net.Graph)
		if err != nil {
			return nil, err
		}
		if err := net.Graph.AddConnection(edge); err != nil {
			return nil, err
		}
	}

	for _, mb := range nf.Monitors {
		layer, ok := net.Graph.Layer(mb.Layer)
		if !ok {
			return nil, fmt.Errorf("monitor %q: unknown layer %q", mb.Name, mb.Layer)
		}
		if err := net.Graph.AddMonitor(sim.NewMonitor(mb.Name, layer, nil)); err != nil {
			return nil, err
		}
	}

	cfg, err := nf.engineConfig()
	if err != nil {
		return nil, err
	}
	net.Engine = cfg

	return net, nil
}

// computeFn resolves the layer's built-in update rule.
func (lb *layerBlock) computeFn() (sim.ComputeFn, error) {
	switch lb.Kind {
	case "", "identity", "input":
		return sim.InputCompute(), nil
	case "leaky":
		decay, err := evalFloat(lb.Decay, 1)
		if err != nil {
			return nil, fmt.Errorf("layer %q: decay: %w", lb.Name, err)
		}
		threshold, err := evalFloat(lb.Threshold, 0)
		if err != nil {
			return nil, fmt.Errorf("layer %q: threshold: %w", lb.Name, err)
		}
		reset, err := evalFloat(lb.Reset, 0)
		if err != nil {
			return nil, fmt.Errorf("layer %q: reset: %w", lb.Name, err)
		}
		return sim.LeakyCompute(decay, threshold, reset), nil
	default:
		return nil, fmt.Errorf("layer %q: unknown kind %q", lb.Name, lb.Kind)
	}
}

// inputSpec resolves the layer's external input declaration. ok is false
// when the layer declares no input at all.
func (lb *layerBlock) inputSpec() (InputSpec, bool, error) {
	rate, err := evalFloat(lb.InputRate, 0)
	if err != nil {
		return InputSpec{}, false, fmt.Errorf("layer %q: input_rate: %w", lb.Name, err)
	}
	period, err := evalFloat(lb.InputPeriod, 0)
	if err != nil {
		return InputSpec{}, false, fmt.Errorf("layer %q: input_period: %w", lb.Name, err)
	}
	value, err := evalFloat(lb.InputValue, 0)
	if err != nil {
		return InputSpec{}, false, fmt.Errorf("layer %q: input_value: %w", lb.Name, err)
	}

	spec := InputSpec{Encoding: lb.InputEncoding, Rate: rate, Period: int(period), Value: value}
	switch lb.InputEncoding {
	case "":
		if rate <= 0 {
			return InputSpec{}, false, nil
		}
		spec.Encoding = "bernoulli"
	case "bernoulli":
		if rate <= 0 {
			return InputSpec{}, false, fmt.Errorf("layer %q: bernoulli encoding needs a positive input_rate", lb.Name)
		}
	case "regular":
		if spec.Period <= 0 {
			return InputSpec{}, false, fmt.Errorf("layer %q: regular encoding needs a positive input_period", lb.Name)
		}
	case "constant":
		if value == 0 {
			return InputSpec{}, false, fmt.Errorf("layer %q: constant encoding needs a non-zero input_value", lb.Name)
		}
	default:
		return InputSpec{}, false, fmt.Errorf("layer %q: unknown input_encoding %q", lb.Name, lb.InputEncoding)
	}
	return spec, true, nil
}

// build constructs the edge declared by the block, resolving its weight
// matrix and optional learning rule.
func (cb *connectionBlock) build(g *sim.Graph) (*sim.Edge, error) {
	name := cb.Source + "_to_" + cb.Target

	source, ok := g.Layer(cb.Source)
	if !ok {
		return nil, fmt.Errorf("connection %q: unknown source layer %q", name, cb.Source)
	}
	target, ok := g.Layer(cb.Target)
	if !ok {
		return nil, fmt.Errorf("connection %q: unknown target layer %q", name, cb.Target)
	}

	weights, err := cb.weightMatrix(name, source.Size(), target.Size())
	if err != nil {
		return nil, err
	}

	var opts []sim.EdgeOption
	switch cb.Rule {
	case "":
	case "hebbian":
		rate, err := evalFloat(cb.Rate, 0.01)
		if err != nil {
			return nil, fmt.Errorf("connection %q: rate: %w", name, err)
		}
		wmax, err := evalFloat(cb.WMax, 0)
		if err != nil {
			return nil, fmt.Errorf("connection %q: w_max: %w", name, err)
		}
		opts = append(opts, sim.WithLearnFn(sim.Hebbian(rate, wmax)))
	default:
		return nil, fmt.Errorf("connection %q: unknown rule %q", name, cb.Rule)
	}

	normalize, err := evalFloat(cb.Normalize, 0)
	if err != nil {
		return nil, fmt.Errorf("connection %q: normalize: %w", name, err)
	}
	if normalize > 0 {
		opts = append(opts, sim.WithNormalizeTo(normalize))
	}

	return sim.NewEdge(name, source, target, weights, opts...)
}

// weightMatrix resolves the explicit weights expression or the fill scalar
// into a [rows][cols] matrix.
func (cb *connectionBlock) weightMatrix(name string, rows, cols int) ([][]float64, error) {
	if !exprAbsent(cb.Weights) {
		val, diags := cb.Weights.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("connection %q: weights: %w", name, diags)
		}
		conv, err := convert.Convert(val, cty.List(cty.List(cty.Number)))
		if err != nil {
			return nil, fmt.Errorf("connection %q: weights must be a list of number lists: %w", name, err)
		}
		var weights [][]float64
		if err := gocty.FromCtyValue(conv, &weights); err != nil {
			return nil, fmt.Errorf("connection %q: weights: %w", name, err)
		}
		return weights, nil
	}

	fill, err := evalFloat(cb.Fill, 0)
	if err != nil {
		return nil, fmt.Errorf("connection %q: fill: %w", name, err)
	}
	weights := make([][]float64, rows)
	for i := range weights {
		weights[i] = make([]float64, cols)
		for j := range weights[i] {
			weights[i][j] = fill
		}
	}
	return weights, nil
}

// engineConfig assembles the network's execution defaults.
func (nf *networkFile) engineConfig() (engine.Config, error) {
	cfg := engine.Config{}
	if nf.Engine == nil {
		return cfg, nil
	}

	cfg.Workers = nf.Engine.Workers
	cfg.QueueCapacity = nf.Engine.QueueCapacity

	if nf.Engine.Strategy != "" {
		strategy, err := engine.ParseStrategy(nf.Engine.Strategy)
		if err != nil {
			return cfg, fmt.Errorf("engine block: %w", err)
		}
		cfg.Strategy = strategy
	}
	if nf.Engine.StepTimeout != "" {
		timeout, err := time.ParseDuration(nf.Engine.StepTimeout)
		if err != nil {
			return cfg, fmt.Errorf("engine block: step_timeout: %w", err)
		}
		cfg.StepTimeout = timeout
	}
	return cfg, nil
}

// exprAbsent reports whether an optional expression attribute was omitted.
// gohcl leaves omitted expression fields nil or bound to a null value
// depending on the decode path, so both are checked.
func exprAbsent(expr hcl.Expression) bool {
	if expr == nil {
		return true
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return false
	}
	return val.IsNull()
}

// evalFloat evaluates an optional numeric attribute, applying the default
// when the attribute was omitted.
func evalFloat(expr hcl.Expression, def float64) (float64, error) {
	if exprAbsent(expr) {
		return def, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, diags
	}
	conv, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("expected a number: %w", err)
	}
	var out float64
	if err := gocty.FromCtyValue(conv, &out); err != nil {
		return 0, err
	}
	return out, nil
}
