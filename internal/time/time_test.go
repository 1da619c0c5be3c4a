package time

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_JSON(t *testing.T) {
	type test struct {
		json     string
		duration time.Duration
		err      bool
	}

	tests := map[string]test{
		"string": {
			json:     `"150ms"`,
			duration: 150 * time.Millisecond,
		},
		"nanos": {
			json:     `1000000000`,
			duration: time.Second,
		},
		"invalid-string": {
			json: `"soon"`,
			err:  true,
		},
		"invalid-type": {
			json: `true`,
			err:  true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.json), &d)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.duration, d.Duration)

			b, err := json.Marshal(d)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf(`"%s"`, tt.duration.String()), string(b))
		})
	}
}

func TestDuration_YAML(t *testing.T) {
	var v struct {
		Tick Duration `yaml:"tick"`
		Max  Duration `yaml:"max"`
	}
	err := yaml.Unmarshal([]byte("tick: 2s\nmax: 500\n"), &v)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, v.Tick.Duration)
	assert.Equal(t, 500*time.Nanosecond, v.Max.Duration)

	b, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(b), "tick: 2s")
}

func TestExecute(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var count int32
	done := make(chan struct{})
	Execute(ctx, time.Millisecond, func() time.Duration {
		if atomic.AddInt32(&count, 1) == 5 {
			cancel()
		}
		return 0
	}, func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("execution did not stop")
	}
	c := atomic.LoadInt32(&count)
	assert.True(t, c >= 5, "%d", c)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, c, atomic.LoadInt32(&count))
}

func TestExecute_Delay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var count int32
	done := make(chan struct{})
	Execute(ctx, time.Millisecond, func() time.Duration {
		atomic.AddInt32(&count, 1)
		return time.Hour
	}, func() {
		close(done)
	})

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
}
