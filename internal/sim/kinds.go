package sim

// Built-in layer update rules. A network definition picks one per layer;
// anything else can be supplied as a custom ComputeFn.

// InputCompute returns an update rule whose state is exactly the accumulated
// input. Used for layers driven from outside the graph and for the identity
// layers of pass-through topologies.
func InputCompute() ComputeFn {
	return func(state, input []float64) ([]float64, error) {
		out := make([]float64, len(input))
		copy(out, input)
		return out, nil
	}
}

// LeakyCompute returns a leaky-accumulator update rule:
//
//	v = decay*v + input
//
// With a positive threshold, a unit whose value crossed the threshold on the
// previous step restarts from the reset value before decaying. A threshold of
// zero disables the reset and the rule degrades to a plain leaky integrator.
func LeakyCompute(decay, threshold, reset float64) ComputeFn {
	return func(state, input []float64) ([]float64, error) {
		out := make([]float64, len(state))
		for i := range state {
			v := state[i]
			if threshold > 0 && v >= threshold {
				v = reset
			}
			out[i] = decay*v + input[i]
		}
		return out, nil
	}
}
