package emoji

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drakos74/free-learn/internal/model"
)

func TestMapConfidence(t *testing.T) {
	type test struct {
		p     float64
		emoji string
	}

	tests := map[string]test{
		"zero":    {p: 0, emoji: Comet},
		"low":     {p: 0.2, emoji: EclipseFace},
		"half":    {p: 0.5, emoji: HalfEclipse},
		"high":    {p: 0.75, emoji: FullMoon},
		"certain": {p: 1, emoji: Star},
		"nan":     {p: math.NaN(), emoji: Error},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.emoji, MapConfidence(tt.p))
		})
	}
}

func TestPrediction(t *testing.T) {
	s := Prediction(model.Prediction{
		Label:         1,
		Name:          "right",
		Confidence:    0.9,
		Probabilities: []float64{0.1, 0.9},
	})
	fmt.Printf("s = %+v\n", s)
	assert.Contains(t, s, "right (0.90)")
}

func TestProgress(t *testing.T) {
	first := model.NewProgress(0, 0, 3, 0, 8, 0.7, 0.5)
	second := model.NewProgress(0, 1, 3, 1, 8, 0.6, 0.5)
	assert.Contains(t, Progress(second, first), Down)
	assert.Contains(t, Progress(first, second), Up)
	assert.Contains(t, Progress(model.NewProgress(0, 2, 3, 2, 4, math.NaN(), 0), second), Error)
}
