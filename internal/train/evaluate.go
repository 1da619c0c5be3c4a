package train

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	coremath "github.com/drakos74/free-learn/internal/math"
	"github.com/drakos74/free-learn/internal/math/ml"
	"github.com/drakos74/free-learn/internal/model"
	"github.com/drakos74/free-learn/internal/store"
)

// Evaluation summarises the performance of a classifier on a labeled dataset.
// Confusion[i][j] counts the examples of label i predicted as label j.
type Evaluation struct {
	Samples   int     `json:"samples"`
	Loss      float64 `json:"loss"`
	Accuracy  float64 `json:"accuracy"`
	Confusion [][]int `json:"confusion"`
}

func (e Evaluation) String() string {
	rows := make([]string, len(e.Confusion))
	for i, row := range e.Confusion {
		rows[i] = fmt.Sprintf("%v", row)
	}
	return fmt.Sprintf("samples:%d loss:%s accuracy:%s confusion:[%s]",
		e.Samples,
		coremath.Format(e.Loss),
		coremath.Format(e.Accuracy),
		strings.Join(rows, " "))
}

// Evaluate runs the dataset through the classifier without updating it.
func Evaluate(classifier *ml.Classifier, ds store.Dataset) (Evaluation, error) {
	if classifier == nil {
		return Evaluation{}, model.NotTrainedErr
	}
	if ds.Size() == 0 {
		return Evaluation{}, model.EmptyDatasetErr
	}
	if ds.Dim() != classifier.Inputs() {
		return Evaluation{}, fmt.Errorf("dataset dim %d does not match classifier inputs %d: %w", ds.Dim(), classifier.Inputs(), model.DimensionMismatchErr)
	}
	p, err := classifier.Forward(ds.X)
	if err != nil {
		return Evaluation{}, fmt.Errorf("could not evaluate dataset: %w", err)
	}
	confusion := make([][]int, ds.Classes)
	for i := range confusion {
		confusion[i] = make([]int, ds.Classes)
	}
	for i, label := range ds.Labels {
		predicted, _ := coremath.ArgMax(p.RawRowView(i))
		confusion[label][predicted]++
	}
	return Evaluation{
		Samples:   ds.Size(),
		Loss:      ml.CrossEntropy(ds.Y, p),
		Accuracy:  ml.Accuracy(ds.Y, p),
		Confusion: confusion,
	}, nil
}

// Baseline trains a random forest on the training set and returns its accuracy on the test set.
// It gives a reference point for the accuracy of the trained classifier.
func Baseline(training, test store.Dataset, trees int) (float64, error) {
	if training.Size() == 0 || test.Size() == 0 {
		return 0, model.EmptyDatasetErr
	}
	if training.Dim() != test.Dim() {
		return 0, fmt.Errorf("dataset dims do not match [ %d | %d ]: %w", training.Dim(), test.Dim(), model.DimensionMismatchErr)
	}
	forest := ml.NewForest(trees)
	if _, err := forest.Train(rows(training.X), classes(training.Labels)); err != nil {
		return 0, fmt.Errorf("could not train baseline: %w", err)
	}
	var hits int
	for i, label := range test.Labels {
		predicted, _, err := forest.Predict(test.Embedding(i))
		if err != nil {
			return 0, fmt.Errorf("could not run baseline: %w", err)
		}
		if predicted == int(label) {
			hits++
		}
	}
	return float64(hits) / float64(test.Size()), nil
}

// Split divides the dataset keeping the last fraction of examples for validation.
// Both parts are views on the original dataset.
func Split(ds store.Dataset, fraction float64) (store.Dataset, store.Dataset) {
	n := ds.Size()
	v := int(float64(n) * fraction)
	if n == 0 || v <= 0 {
		return ds, store.Dataset{Classes: ds.Classes}
	}
	if v >= n {
		return store.Dataset{Classes: ds.Classes}, ds
	}
	cut := n - v
	return slice(ds, 0, cut), slice(ds, cut, n)
}

func slice(ds store.Dataset, lo, hi int) store.Dataset {
	return store.Dataset{
		X:       ds.X.Slice(lo, hi, 0, ds.Dim()).(*mat.Dense),
		Y:       ds.Y.Slice(lo, hi, 0, ds.Classes).(*mat.Dense),
		Labels:  ds.Labels[lo:hi],
		Classes: ds.Classes,
	}
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	x := make([][]float64, r)
	for i := 0; i < r; i++ {
		x[i] = mat.Row(nil, i, m)
	}
	return x
}

func classes(labels []model.Label) []int {
	y := make([]int, len(labels))
	for i, l := range labels {
		y[i] = int(l)
	}
	return y
}
