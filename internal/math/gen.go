package math

import (
	"golang.org/x/exp/rand"
)

// Cluster generates n vectors around the given center,
// perturbing every coordinate uniformly within [-noise, noise].
func Cluster(rnd *rand.Rand, center []float64, noise float64, n int) [][]float64 {
	xx := make([][]float64, n)
	for i := 0; i < n; i++ {
		x := make([]float64, len(center))
		for j, c := range center {
			x[j] = c + noise*(2*rnd.Float64()-1)
		}
		xx[i] = x
	}
	return xx
}
