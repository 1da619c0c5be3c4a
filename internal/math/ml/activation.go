package ml

import (
	"math"

	xml "github.com/drakos74/go-ex-machina/xmachina/ml"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ReLU is the rectified linear activation.
// D is evaluated on the activation output, same as the xmachina activations.
var ReLU xml.Activation = relu{}

type relu struct {
}

// F applies the activation function.
func (r relu) F(x float64) float64 {
	return xml.ReLU.F(x)
}

// D returns the derivative of the activation function.
func (r relu) D(y float64) float64 {
	if y > 0 {
		return 1
	}
	return 0
}

// Softmax normalises the vector into a probability distribution in place.
func Softmax(v []float64) []float64 {
	if len(v) == 0 {
		return v
	}
	max := floats.Max(v)
	for i, x := range v {
		v[i] = math.Exp(x - max)
	}
	sum := floats.Sum(v)
	floats.Scale(1/sum, v)
	return v
}

// softmaxRows applies the softmax on each row of the matrix in place.
func softmaxRows(m *mat.Dense) *mat.Dense {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		Softmax(m.RawRowView(i))
	}
	return m
}
