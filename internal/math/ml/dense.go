package ml

import (
	"math"

	xml "github.com/drakos74/go-ex-machina/xmachina/ml"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Dense is a fully connected layer.
// W has one row per input and one column per unit.
type Dense struct {
	W          *mat.Dense
	B          []float64
	activation xml.Activation
}

// NewDense creates a layer with variance scaling initialised weights and zero bias.
func NewDense(in, units int, activation xml.Activation, src rand.Source) *Dense {
	return &Dense{
		W:          mat.NewDense(in, units, varianceScaling(in, in*units, src)),
		B:          make([]float64, units),
		activation: activation,
	}
}

// Units returns the output width of the layer.
func (d *Dense) Units() int {
	_, c := d.W.Dims()
	return c
}

// Inputs returns the input width of the layer.
func (d *Dense) Inputs() int {
	r, _ := d.W.Dims()
	return r
}

// forward computes the activations for a batch of inputs, one sample per row.
func (d *Dense) forward(x mat.Matrix) *mat.Dense {
	var z mat.Dense
	z.Mul(x, d.W)
	z.Apply(func(_, j int, v float64) float64 {
		v += d.B[j]
		if d.activation != nil {
			return d.activation.F(v)
		}
		return v
	}, &z)
	return &z
}

// params exposes the raw parameter slices for the optimizer.
func (d *Dense) params() [][]float64 {
	return [][]float64{d.W.RawMatrix().Data, d.B}
}

// varianceScaling draws weights from a normal distribution truncated at two standard deviations,
// with variance 1/fanIn.
func varianceScaling(fanIn, n int, src rand.Source) []float64 {
	sigma := math.Sqrt(1 / math.Max(1, float64(fanIn)))
	normal := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	ww := make([]float64, n)
	for i := range ww {
		w := normal.Rand()
		for math.Abs(w) > 2*sigma {
			w = normal.Rand()
		}
		ww[i] = w
	}
	return ww
}

// colSum sums the matrix columns.
func colSum(m *mat.Dense) []float64 {
	r, c := m.Dims()
	sum := make([]float64, c)
	for i := 0; i < r; i++ {
		for j, v := range m.RawRowView(i) {
			sum[j] += v
		}
	}
	return sum
}
