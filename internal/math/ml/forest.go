package ml

import (
	"fmt"

	randomforest "github.com/malaschitz/randomForest"
	"github.com/rs/zerolog/log"

	coremath "github.com/drakos74/free-learn/internal/math"
)

// RandomForest is a reference classifier used to benchmark the trained head.
type RandomForest struct {
	trees  int
	forest *randomforest.Forest
}

// NewForest creates a new random forest with n trees.
func NewForest(n int) *RandomForest {
	return &RandomForest{
		trees: n,
	}
}

// Train fits the forest on the given samples and returns the feature importance.
func (rf *RandomForest) Train(xData [][]float64, yData []int) ([]float64, error) {
	if len(xData) == 0 || len(xData) != len(yData) {
		return nil, fmt.Errorf("invalid forest data [ %d | %d ]", len(xData), len(yData))
	}
	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: xData, Class: yData}
	forest.Train(rf.trees)
	rf.forest = forest
	log.Debug().
		Int("trees", rf.trees).
		Int("samples", len(xData)).
		Msg("trained forest")
	return forest.FeatureImportance, nil
}

// Predict returns the most voted class and its share of the votes.
func (rf *RandomForest) Predict(x []float64) (int, float64, error) {
	if rf.forest == nil {
		return 0, 0, fmt.Errorf("forest is not trained")
	}
	votes := rf.forest.Vote(x)
	i, v := coremath.ArgMax(votes)
	return i, v, nil
}
