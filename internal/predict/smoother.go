package predict

import (
	"github.com/drakos74/free-learn/internal/buffer"
	"github.com/drakos74/free-learn/internal/model"
)

// Smoother averages the probabilities of the last predictions,
// so that a single noisy frame does not flip the predicted label.
type Smoother struct {
	labels model.Labels
	window *buffer.Ring[[]float64]
}

// NewSmoother creates a smoother over the given window size.
// A window of 1 passes the predictions through.
func NewSmoother(labels model.Labels, window int) *Smoother {
	return &Smoother{
		labels: labels,
		window: buffer.NewRing[[]float64](window),
	}
}

// Push adds the prediction to the window and returns the averaged one.
func (s *Smoother) Push(p model.Prediction) model.Prediction {
	if s.window.Cap() == 1 {
		return p
	}
	s.window.Push(p.Probabilities)
	values := s.window.Get()
	avg := make([]float64, len(p.Probabilities))
	var n float64
	for _, v := range values {
		if len(v) != len(avg) {
			continue
		}
		n++
		for i, x := range v {
			avg[i] += x
		}
	}
	for i := range avg {
		avg[i] /= n
	}
	return newPrediction(s.labels, avg, p.Time)
}

// Reset drops the window.
func (s *Smoother) Reset() {
	s.window.Reset()
}
