package predict

import (
	"fmt"
	"time"

	coremath "github.com/drakos74/free-learn/internal/math"
	"github.com/drakos74/free-learn/internal/math/ml"
	"github.com/drakos74/free-learn/internal/model"
)

// Predict runs the embedding through the classifier and returns the most likely label
// together with the full probability distribution.
func Predict(classifier *ml.Classifier, labels model.Labels, embedding model.Embedding) (model.Prediction, error) {
	if classifier == nil {
		return model.Prediction{}, model.NotTrainedErr
	}
	if embedding.Dim() != classifier.Inputs() {
		return model.Prediction{}, fmt.Errorf("embedding of length %d for classifier of %d inputs: %w", embedding.Dim(), classifier.Inputs(), model.DimensionMismatchErr)
	}
	p, err := classifier.Predict(embedding)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("could not predict: %w", err)
	}
	return newPrediction(labels, p, time.Now()), nil
}

func newPrediction(labels model.Labels, p []float64, now time.Time) model.Prediction {
	i, confidence := coremath.ArgMax(p)
	label := model.Label(i)
	return model.Prediction{
		Label:         label,
		Name:          labels.Name(label),
		Confidence:    confidence,
		Probabilities: p,
		Time:          now,
	}
}
