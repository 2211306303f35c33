// Package encode generates input spike trains for driving a simulation from
// the CLI. The engine itself is agnostic to how inputs are produced; these
// encoders only feed the injected external inputs of input layers.
package encode

import "math/rand/v2"

// Bernoulli draws an n-length binary spike vector where each unit fires with
// the given rate.
func Bernoulli(rng *rand.Rand, n int, rate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if rng.Float64() < rate {
			out[i] = 1
		}
	}
	return out
}

// Regular fires every unit on steps that are whole multiples of the period
// and stays silent otherwise, giving an evenly spaced spike train.
func Regular(step, period, n int) []float64 {
	out := make([]float64, n)
	if period <= 0 || step%period != 0 {
		return out
	}
	for i := range out {
		out[i] = 1
	}
	return out
}

// Constant returns an n-length vector filled with the given value.
func Constant(n int, value float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}
