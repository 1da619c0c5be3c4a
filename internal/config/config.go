package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/drakos74/free-learn/internal/model"
	learntime "github.com/drakos74/free-learn/internal/time"
	"github.com/drakos74/free-learn/internal/train"
)

// Storage kinds for the recorded examples.
const (
	StorageNone   = "none"
	StorageMemory = "memory"
	StorageJson   = "json"
	StorageBadger = "badger"
)

// Config is the configuration of a learning session.
type Config struct {
	Labels  []string     `json:"labels" yaml:"labels"`
	Train   train.Config `json:"train" yaml:"train"`
	Session Session      `json:"session" yaml:"session"`
	Frame   Frame        `json:"frame" yaml:"frame"`
	Storage Storage      `json:"storage" yaml:"storage"`
}

// Session configures the recording and predicting loops.
// TickInterval is the pause between two captured frames
// MaxBackoff caps the pause after consecutive capture failures
// SmoothingWindow is the number of predictions averaged for the reported label
type Session struct {
	TickInterval    learntime.Duration `json:"tick_interval" yaml:"tick_interval"`
	MaxBackoff      learntime.Duration `json:"max_backoff" yaml:"max_backoff"`
	SmoothingWindow int                `json:"smoothing_window" yaml:"smoothing_window"`
}

// Frame configures the frame preprocessing.
type Frame struct {
	Size int  `json:"size" yaml:"size"`
	Gray bool `json:"gray" yaml:"gray"`
}

// Storage configures where recorded examples are kept.
type Storage struct {
	Kind string `json:"kind" yaml:"kind"`
	Path string `json:"path" yaml:"path"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Labels: []string{"left", "right"},
		Train:  train.DefaultConfig(),
		Session: Session{
			TickInterval:    learntime.Duration{Duration: 100 * time.Millisecond},
			MaxBackoff:      learntime.Duration{Duration: 5 * time.Second},
			SmoothingWindow: 1,
		},
		Frame: Frame{
			Size: 224,
		},
		Storage: Storage{
			Kind: StorageNone,
		},
	}
}

// Load reads the config file on top of the defaults.
// Files with a .yaml or .yml extension are parsed as yaml, anything else as json.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config '%s': %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		err = json.Unmarshal(b, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("could not unmarshal config '%s': %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	log.Info().Str("path", path).Strs("labels", cfg.Labels).Msg("loaded config")
	return cfg, nil
}

// MustLoad loads the config or panics.
func MustLoad(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("could not load config: %s", err.Error()))
	}
	return cfg
}

// Validate checks the config values.
func (c Config) Validate() error {
	if _, err := model.NewLabels(c.Labels...); err != nil {
		return err
	}
	if err := c.Train.Validate(); err != nil {
		return err
	}
	if c.Session.TickInterval.Duration <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v: %w", c.Session.TickInterval, model.InvalidConfigErr)
	}
	if c.Session.MaxBackoff.Duration < c.Session.TickInterval.Duration {
		return fmt.Errorf("max backoff %v is less than the tick interval %v: %w", c.Session.MaxBackoff, c.Session.TickInterval, model.InvalidConfigErr)
	}
	if c.Session.SmoothingWindow < 1 {
		return fmt.Errorf("smoothing window must be at least 1, got %d: %w", c.Session.SmoothingWindow, model.InvalidConfigErr)
	}
	if c.Frame.Size <= 0 {
		return fmt.Errorf("frame size must be positive, got %d: %w", c.Frame.Size, model.InvalidConfigErr)
	}
	switch c.Storage.Kind {
	case StorageNone, StorageMemory:
	case StorageJson, StorageBadger:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage '%s' needs a path: %w", c.Storage.Kind, model.InvalidConfigErr)
		}
	default:
		return fmt.Errorf("unknown storage kind '%s': %w", c.Storage.Kind, model.InvalidConfigErr)
	}
	return nil
}

// LabelSet returns the validated label set.
func (c Config) LabelSet() (model.Labels, error) {
	return model.NewLabels(c.Labels...)
}
