package sim

// Hebbian returns the built-in correlation learning rule:
//
//	w[i][j] += rate * pre[i] * post[j]
//
// with weights clamped to [0, wmax] when wmax is positive.
func Hebbian(rate, wmax float64) LearnFn {
	return func(pre, post []float64, weights [][]float64) ([][]float64, error) {
		next := make([][]float64, len(weights))
		for i, row := range weights {
			next[i] = make([]float64, len(row))
			for j, w := range row {
				w += rate * pre[i] * post[j]
				if wmax > 0 {
					if w > wmax {
						w = wmax
					}
					if w < 0 {
						w = 0
					}
				}
				next[i][j] = w
			}
		}
		return next, nil
	}
}
