package math

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// Format formats a float based on the given precision
func Format(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

// OneHot encodes the index into a vector of the given size
// with a single 1 at the index position.
func OneHot(index, size int) []float64 {
	v := make([]float64, size)
	if index >= 0 && index < size {
		v[index] = 1
	}
	return v
}

// ArgMax returns the index of the maximum value and the value itself.
// For ties the first index wins.
func ArgMax(v []float64) (int, float64) {
	if len(v) == 0 {
		return -1, math.NaN()
	}
	i := floats.MaxIdx(v)
	return i, v[i]
}

// BatchSize computes the number of samples in a batch for the given dataset size and fraction.
// The result is never less than 1.
func BatchSize(n int, fraction float64) int {
	size := int(math.Floor(float64(n) * fraction))
	if size < 1 {
		return 1
	}
	return size
}

// Batches returns the number of batches needed to cover n samples.
func Batches(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Finite checks that none of the values is NaN or Inf.
func Finite(v ...float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Clip bounds the value within [min, max].
func Clip(x, min, max float64) float64 {
	return math.Max(min, math.Min(max, x))
}
