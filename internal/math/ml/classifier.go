package ml

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Classifier is a small feed forward network mapping an embedding to class probabilities.
// flatten -> dense(hidden, relu) -> dense(classes, softmax)
// The input is the flattened embedding, so the flatten stage is the identity on vectors.
type Classifier struct {
	hidden *Dense
	output *Dense
}

// NewClassifier creates a classifier with freshly initialised weights.
func NewClassifier(inputs, hidden, classes int, seed uint64) (*Classifier, error) {
	if inputs <= 0 || hidden <= 0 || classes <= 0 {
		return nil, fmt.Errorf("invalid classifier shape [ %d | %d | %d ]", inputs, hidden, classes)
	}
	src := rand.NewSource(seed)
	return &Classifier{
		hidden: NewDense(inputs, hidden, ReLU, src),
		output: NewDense(hidden, classes, nil, src),
	}, nil
}

// Inputs returns the expected embedding length.
func (c *Classifier) Inputs() int {
	return c.hidden.Inputs()
}

// Hidden returns the number of hidden units.
func (c *Classifier) Hidden() int {
	return c.hidden.Units()
}

// Classes returns the number of output classes.
func (c *Classifier) Classes() int {
	return c.output.Units()
}

// Forward computes the class probabilities for a batch of embeddings, one per row.
func (c *Classifier) Forward(x mat.Matrix) (*mat.Dense, error) {
	_, d := x.Dims()
	if d != c.Inputs() {
		return nil, fmt.Errorf("expected %d inputs, got %d", c.Inputs(), d)
	}
	h := c.hidden.forward(x)
	return softmaxRows(c.output.forward(h)), nil
}

// Predict computes the class probabilities for a single embedding.
func (c *Classifier) Predict(x []float64) ([]float64, error) {
	if len(x) != c.Inputs() {
		return nil, fmt.Errorf("expected %d inputs, got %d", c.Inputs(), len(x))
	}
	p, err := c.Forward(mat.NewDense(1, len(x), x))
	if err != nil {
		return nil, err
	}
	return p.RawRowView(0), nil
}

// Fit runs one gradient step on the batch and returns the loss and accuracy
// of the batch as seen before the update.
func (c *Classifier) Fit(x, y mat.Matrix, opt *Adam) (float64, float64, error) {
	n, d := x.Dims()
	ny, k := y.Dims()
	if n != ny {
		return 0, 0, fmt.Errorf("inputs and labels do not align [ %d | %d ]", n, ny)
	}
	if d != c.Inputs() || k != c.Classes() {
		return 0, 0, fmt.Errorf("batch shape [ %d | %d ] does not match classifier [ %d | %d ]", d, k, c.Inputs(), c.Classes())
	}
	if n == 0 {
		return 0, 0, fmt.Errorf("empty batch")
	}

	h := c.hidden.forward(x)
	p := softmaxRows(c.output.forward(h))

	loss := CrossEntropy(y, p)
	acc := Accuracy(y, p)

	// softmax with cross entropy reduces to (p - y) / n on the logits
	var dz mat.Dense
	dz.Sub(p, y)
	dz.Scale(1/float64(n), &dz)

	var dw2 mat.Dense
	dw2.Mul(h.T(), &dz)
	db2 := colSum(&dz)

	var dh mat.Dense
	dh.Mul(&dz, c.output.W.T())
	dh.Apply(func(i, j int, v float64) float64 {
		return v * c.hidden.activation.D(h.At(i, j))
	}, &dh)

	var dw1 mat.Dense
	dw1.Mul(x.T(), &dh)
	db1 := colSum(&dh)

	params := append(c.hidden.params(), c.output.params()...)
	grads := [][]float64{dw1.RawMatrix().Data, db1, dw2.RawMatrix().Data, db2}
	if err := opt.Update(params, grads); err != nil {
		return loss, acc, fmt.Errorf("could not update parameters: %w", err)
	}
	return loss, acc, nil
}
