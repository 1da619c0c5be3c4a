package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakos74/free-learn/internal/model"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"left", "right"}, cfg.Labels)
	assert.Equal(t, 0.001, cfg.Train.LearningRate)
	assert.Equal(t, 0.4, cfg.Train.BatchSizeFraction)
	assert.Equal(t, 30, cfg.Train.Epochs)
	assert.Equal(t, 100, cfg.Train.HiddenUnits)

	labels, err := cfg.LabelSet()
	require.NoError(t, err)
	assert.Equal(t, 2, labels.Size())
}

func TestConfig_Validate(t *testing.T) {
	type test struct {
		cfg func(c Config) Config
		err bool
	}

	tests := map[string]test{
		"single-label": {
			cfg: func(c Config) Config {
				c.Labels = []string{"left"}
				return c
			},
			err: true,
		},
		"duplicate-label": {
			cfg: func(c Config) Config {
				c.Labels = []string{"left", "left"}
				return c
			},
			err: true,
		},
		"train": {
			cfg: func(c Config) Config {
				c.Train.Epochs = 0
				return c
			},
			err: true,
		},
		"tick": {
			cfg: func(c Config) Config {
				c.Session.TickInterval.Duration = 0
				return c
			},
			err: true,
		},
		"backoff": {
			cfg: func(c Config) Config {
				c.Session.MaxBackoff.Duration = time.Millisecond
				return c
			},
			err: true,
		},
		"window": {
			cfg: func(c Config) Config {
				c.Session.SmoothingWindow = 0
				return c
			},
			err: true,
		},
		"frame": {
			cfg: func(c Config) Config {
				c.Frame.Size = 0
				return c
			},
			err: true,
		},
		"storage-kind": {
			cfg: func(c Config) Config {
				c.Storage.Kind = "s3"
				return c
			},
			err: true,
		},
		"storage-path": {
			cfg: func(c Config) Config {
				c.Storage.Kind = StorageBadger
				return c
			},
			err: true,
		},
		"memory": {
			cfg: func(c Config) Config {
				c.Storage.Kind = StorageMemory
				return c
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.cfg(Default()).Validate()
			if tt.err {
				assert.True(t, errors.Is(err, model.InvalidConfigErr), "%v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	type test struct {
		file    string
		content string
		check   func(t *testing.T, cfg Config)
		err     bool
	}

	tests := map[string]test{
		"json": {
			file: "config.json",
			content: `{
  "labels": ["circle", "triangle", "square"],
  "train": {"hidden_units": 16, "learning_rate": 0.01, "epochs": 10, "batch_size_fraction": 0.5, "shuffle": true, "seed": 7},
  "session": {"tick_interval": "50ms", "max_backoff": "2s", "smoothing_window": 5},
  "storage": {"kind": "json", "path": "data"}
}`,
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, []string{"circle", "triangle", "square"}, cfg.Labels)
				assert.Equal(t, 16, cfg.Train.HiddenUnits)
				assert.Equal(t, uint64(7), cfg.Train.Seed)
				assert.Equal(t, 50*time.Millisecond, cfg.Session.TickInterval.Duration)
				assert.Equal(t, 5, cfg.Session.SmoothingWindow)
				assert.Equal(t, StorageJson, cfg.Storage.Kind)
				// defaults are kept for missing sections
				assert.Equal(t, 224, cfg.Frame.Size)
			},
		},
		"yaml": {
			file: "config.yaml",
			content: `
labels: [up, down]
train:
  epochs: 3
session:
  tick_interval: 1s
frame:
  size: 20
  gray: true
`,
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, []string{"up", "down"}, cfg.Labels)
				assert.Equal(t, 3, cfg.Train.Epochs)
				assert.Equal(t, 100, cfg.Train.HiddenUnits)
				assert.Equal(t, time.Second, cfg.Session.TickInterval.Duration)
				assert.Equal(t, 20, cfg.Frame.Size)
				assert.True(t, cfg.Frame.Gray)
			},
		},
		"invalid": {
			file:    "invalid.json",
			content: `{"labels": ["one"]}`,
			err:     true,
		},
		"malformed": {
			file:    "malformed.yml",
			content: "labels: [",
			err:     true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			cfg, err := Load(path)
			if tt.err {
				assert.Error(t, err)
				assert.Panics(t, func() {
					MustLoad(path)
				})
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
