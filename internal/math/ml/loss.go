package ml

import (
	"math"

	coremath "github.com/drakos74/free-learn/internal/math"
	"gonum.org/v1/gonum/mat"
)

// epsilon bounds the probabilities fed into the logarithm of the cross entropy.
const epsilon = 1e-7

// CrossEntropy computes the mean categorical cross entropy of the predicted
// probabilities against the one-hot encoded expectations.
func CrossEntropy(expected, predicted mat.Matrix) float64 {
	r, c := expected.Dims()
	if r == 0 {
		return 0
	}
	var loss float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			y := expected.At(i, j)
			if y == 0 {
				continue
			}
			p := coremath.Clip(predicted.At(i, j), epsilon, 1-epsilon)
			loss -= y * math.Log(p)
		}
	}
	return loss / float64(r)
}

// Accuracy is the fraction of rows where the most probable class matches the expected one.
func Accuracy(expected, predicted mat.Matrix) float64 {
	r, c := expected.Dims()
	if r == 0 {
		return 0
	}
	y := make([]float64, c)
	p := make([]float64, c)
	var hits int
	for i := 0; i < r; i++ {
		mat.Row(y, i, expected)
		mat.Row(p, i, predicted)
		e, _ := coremath.ArgMax(y)
		a, _ := coremath.ArgMax(p)
		if e == a {
			hits++
		}
	}
	return float64(hits) / float64(r)
}
