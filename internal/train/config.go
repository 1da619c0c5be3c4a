package train

import (
	"fmt"

	"github.com/drakos74/free-learn/internal/model"
)

// Config defines the hyper-parameters of a training run.
// HiddenUnits is the width of the dense relu layer
// LearningRate is the step size of the adam optimizer
// Epochs is the number of passes over the dataset
// BatchSizeFraction is the share of the dataset in every batch
// Shuffle re-orders the examples at the start of every epoch
// Seed drives the weight initialisation and the shuffling
type Config struct {
	HiddenUnits       int     `json:"hidden_units" yaml:"hidden_units"`
	LearningRate      float64 `json:"learning_rate" yaml:"learning_rate"`
	Epochs            int     `json:"epochs" yaml:"epochs"`
	BatchSizeFraction float64 `json:"batch_size_fraction" yaml:"batch_size_fraction"`
	Shuffle           bool    `json:"shuffle" yaml:"shuffle"`
	Seed              uint64  `json:"seed" yaml:"seed"`
}

// DefaultConfig returns the hyper-parameters of the webcam exercise.
func DefaultConfig() Config {
	return Config{
		HiddenUnits:       100,
		LearningRate:      0.001,
		Epochs:            30,
		BatchSizeFraction: 0.4,
		Shuffle:           true,
	}
}

// Validate checks that all parameters are within range.
func (c Config) Validate() error {
	if c.HiddenUnits <= 0 {
		return fmt.Errorf("hidden units must be positive, got %d: %w", c.HiddenUnits, model.InvalidConfigErr)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %v: %w", c.LearningRate, model.InvalidConfigErr)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive, got %d: %w", c.Epochs, model.InvalidConfigErr)
	}
	if c.BatchSizeFraction <= 0 || c.BatchSizeFraction > 1 {
		return fmt.Errorf("batch size fraction must be in (0,1], got %v: %w", c.BatchSizeFraction, model.InvalidConfigErr)
	}
	return nil
}
