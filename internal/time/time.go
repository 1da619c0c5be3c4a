package time

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so that it can be configured as "100ms" or as plain nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		if err != nil {
			return err
		}
		return nil
	default:
		return errors.New("invalid duration")
	}
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return err
	}
	switch value := v.(type) {
	case int:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		return err
	default:
		return errors.New("invalid duration")
	}
}

// Execute runs exec right away and then at the specified interval, until the context is done.
// A positive delay returned by exec postpones the next execution.
// shutdown is called once the loop has exited.
func Execute(ctx context.Context, interval time.Duration, exec func() time.Duration, shutdown func()) {
	ticker := time.NewTicker(interval)
	go func() {
		defer shutdown()
		defer ticker.Stop()
		for {
			if delay := exec(); delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					log.Info().Float64("interval", interval.Seconds()).Msg("execution stopped")
					return
				}
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				log.Info().Float64("interval", interval.Seconds()).Msg("execution stopped")
				return
			}
		}
	}()
}
