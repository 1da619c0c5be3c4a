package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakos74/free-learn/internal/concurrent"
	"github.com/drakos74/free-learn/internal/config"
	"github.com/drakos74/free-learn/internal/frame"
	"github.com/drakos74/free-learn/internal/model"
	"github.com/drakos74/free-learn/internal/storage/file/json"
	"github.com/drakos74/free-learn/internal/train"
)

var (
	white = imaging.New(4, 4, color.White)
	black = imaging.New(4, 4, color.Black)
)

// switchSource returns the current frame, failing for the first `failures` captures.
type switchSource struct {
	mutex    sync.Mutex
	img      image.Image
	failures int
	captures int
}

func (s *switchSource) set(img image.Image) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.img = img
}

func (s *switchSource) Capture(ctx context.Context) (image.Image, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.captures++
	if s.captures <= s.failures {
		return nil, fmt.Errorf("camera is warming up: %w", model.CaptureUnavailableErr)
	}
	return s.img, nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Frame.Size = 2
	cfg.Frame.Gray = true
	cfg.Session.TickInterval.Duration = time.Millisecond
	cfg.Session.MaxBackoff.Duration = 10 * time.Millisecond
	cfg.Train.HiddenUnits = 8
	cfg.Train.LearningRate = 0.01
	cfg.Train.Epochs = 50
	cfg.Train.Seed = 1
	return cfg
}

func newSession(t *testing.T, source model.FrameSource, opts ...Option) *Session {
	cfg := testConfig()
	s, err := New(cfg, frame.NewPixelExtractor(cfg.Frame.Size, cfg.Frame.Gray), source, opts...)
	require.NoError(t, err)
	return s
}

func record(t *testing.T, s *Session, source *switchSource, img image.Image, label model.Label, n int) {
	source.set(img)
	start := s.Counts()[label]
	require.NoError(t, s.StartRecording(context.Background(), label))
	assert.Equal(t, Recording, s.State())
	assert.Eventually(t, func() bool {
		return s.Counts()[label]-start >= n
	}, 5*time.Second, time.Millisecond)
	require.NoError(t, s.StopRecording())
	assert.Equal(t, Idle, s.State())
}

func TestNew(t *testing.T) {
	cfg := testConfig()
	extractor := frame.NewPixelExtractor(2, true)

	s1, err := New(cfg, extractor, frame.NewStatic(white))
	require.NoError(t, err)
	s2, err := New(cfg, extractor, frame.NewStatic(white))
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID(), s2.ID())
	assert.Equal(t, Idle, s1.State())
	assert.Nil(t, s1.Classifier())
	assert.Equal(t, []int{0, 0}, s1.Counts())

	s3, err := New(cfg, extractor, frame.NewStatic(white), WithID("fixed"))
	require.NoError(t, err)
	assert.Equal(t, "fixed", s3.ID())

	_, err = New(cfg, nil, frame.NewStatic(white))
	assert.True(t, errors.Is(err, model.InvalidConfigErr))

	cfg.Labels = []string{"only"}
	_, err = New(cfg, extractor, frame.NewStatic(white))
	assert.True(t, errors.Is(err, model.InvalidConfigErr))
}

func TestSession_Record(t *testing.T) {
	source := &switchSource{}
	s := newSession(t, source)

	record(t, s, source, white, 0, 5)
	record(t, s, source, black, 1, 3)

	counts := s.Counts()
	assert.Equal(t, s.Size(), counts[0]+counts[1])

	ds := s.Dataset()
	observed := make([]int, 2)
	for _, l := range ds.Labels {
		observed[l]++
	}
	assert.Equal(t, observed, counts)

	// stopping again does nothing
	assert.NoError(t, s.StopRecording())

	err := s.StartRecording(context.Background(), 2)
	assert.True(t, errors.Is(err, model.InvalidLabelErr))
	assert.Equal(t, Idle, s.State())
}

func TestSession_Busy(t *testing.T) {
	source := &switchSource{img: white}
	s := newSession(t, source)

	require.NoError(t, s.StartRecording(context.Background(), 0))
	defer s.Close()

	err := s.StartRecording(context.Background(), 1)
	assert.True(t, errors.Is(err, model.BusyErr))

	err = s.Train(context.Background(), nil)
	assert.True(t, errors.Is(err, model.BusyErr))

	err = s.Import([]model.Example{{Embedding: model.Embedding{1, 1, 1, 1}, Label: 0}})
	assert.True(t, errors.Is(err, model.BusyErr))

	assert.Equal(t, Recording, s.State())
}

func TestSession_NotTrained(t *testing.T) {
	s := newSession(t, &switchSource{img: white})

	err := s.StartPredicting(context.Background(), func(p model.Prediction) {})
	assert.True(t, errors.Is(err, model.NotTrainedErr))
	assert.Equal(t, Idle, s.State())

	err = s.Train(context.Background(), nil)
	assert.True(t, errors.Is(err, model.EmptyDatasetErr))
	assert.Nil(t, s.Classifier())
	assert.Equal(t, Idle, s.State())
}

func TestSession_EndToEnd(t *testing.T) {
	source := &switchSource{}
	s := newSession(t, source)

	record(t, s, source, white, 0, 10)
	record(t, s, source, black, 1, 10)

	batches := 0
	err := s.Train(context.Background(), train.SinkFunc(func(p model.Progress) {
		assert.Equal(t, Training, s.State())
		batches++
	}))
	require.NoError(t, err)
	assert.True(t, batches >= 50*3, "%d", batches)
	classifier := s.Classifier()
	require.NotNil(t, classifier)
	assert.Equal(t, Idle, s.State())

	for _, tt := range []struct {
		img   image.Image
		label string
	}{
		{img: white, label: "left"},
		{img: black, label: "right"},
	} {
		source.set(tt.img)
		a := concurrent.NewAssertion(3)
		require.NoError(t, s.StartPredicting(context.Background(), func(p model.Prediction) {
			a.Expect(p)
		}))
		assert.Equal(t, Predicting, s.State())

		err = s.StartRecording(context.Background(), 0)
		assert.True(t, errors.Is(err, model.BusyErr))

		predictions := a.Assert(t, 5*time.Second)
		s.StopPredicting()
		assert.Equal(t, Idle, s.State())
		for _, v := range predictions {
			p := v.(model.Prediction)
			assert.Equal(t, tt.label, p.Name)
			assert.Greater(t, p.Confidence, 0.5)
		}
	}

	// a failed run keeps the previous classifier
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Train(ctx, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, classifier, s.Classifier())
}

func TestSession_CaptureFailure(t *testing.T) {
	source := &switchSource{img: white, failures: 3}
	s := newSession(t, source)

	record(t, s, source, white, 0, 2)
	source.mutex.Lock()
	captures := source.captures
	source.mutex.Unlock()
	assert.True(t, captures >= 5, "%d", captures)
	assert.True(t, s.Counts()[0] <= captures-3)
}

func TestSession_ContextExpiry(t *testing.T) {
	s := newSession(t, &switchSource{img: white})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.StartRecording(ctx, 1))
	assert.Eventually(t, func() bool {
		return s.Size() > 0
	}, 5*time.Second, time.Millisecond)
	cancel()
	assert.Eventually(t, func() bool {
		return s.State() == Idle
	}, 5*time.Second, time.Millisecond)

	size := s.Size()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, size, s.Size())
}

func TestSession_Persistence(t *testing.T) {
	persistence := json.NewLocalStorage()
	source := &switchSource{}
	s := newSession(t, source, WithPersistence(persistence))

	record(t, s, source, white, 0, 3)
	record(t, s, source, black, 1, 2)

	restored := newSession(t, source, WithPersistence(persistence))
	assert.NotEqual(t, s.ID(), restored.ID())
	assert.Equal(t, s.Counts(), restored.Counts())
	assert.Equal(t, s.Size(), restored.Size())
	assert.Equal(t, s.Dataset().X.RawMatrix().Data, restored.Dataset().X.RawMatrix().Data)
}

func TestSession_Import(t *testing.T) {
	persistence := json.NewLocalStorage()
	s := newSession(t, &switchSource{img: white}, WithPersistence(persistence))

	err := s.Import([]model.Example{
		{Embedding: model.Embedding{1, 1, 1, 1}, Label: 0},
		{Embedding: model.Embedding{-1, -1, -1, -1}, Label: 1},
		{Embedding: model.Embedding{1, 1, 1, 1}, Label: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, s.Counts())
	assert.Equal(t, Idle, s.State())

	err = s.Import([]model.Example{
		{Embedding: model.Embedding{1, 1}, Label: 0},
	})
	assert.True(t, errors.Is(err, model.DimensionMismatchErr))
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 3, s.Size())

	err = s.Import([]model.Example{
		{Embedding: model.Embedding{1, 1, 1, 1}, Label: 1},
		{Embedding: model.Embedding{1, 1, 1, 1}, Label: 5},
	})
	assert.True(t, errors.Is(err, model.InvalidLabelErr))
	assert.Equal(t, []int{2, 1}, s.Counts())
	assert.Equal(t, 3, s.Size())

	restored := newSession(t, &switchSource{img: white}, WithPersistence(persistence))
	assert.Equal(t, []int{2, 1}, restored.Counts())
}

func TestSession_Replace(t *testing.T) {
	persistence := json.NewLocalStorage()
	examples := []model.Example{
		{Embedding: model.Embedding{1, 1, 1, 1}, Label: 0},
		{Embedding: model.Embedding{-1, -1, -1, -1}, Label: 1},
	}

	for i := 0; i < 3; i++ {
		s := newSession(t, &switchSource{img: white}, WithPersistence(persistence))
		require.NoError(t, s.Replace(examples))
		assert.Equal(t, 2, s.Size())
		assert.Equal(t, []int{1, 1}, s.Counts())
		assert.Equal(t, Idle, s.State())
	}

	s := newSession(t, &switchSource{img: white}, WithPersistence(persistence))
	assert.Equal(t, 2, s.Size())

	err := s.Replace([]model.Example{
		{Embedding: model.Embedding{1, 1, 1, 1}, Label: 0},
		{Embedding: model.Embedding{1, 1}, Label: 1},
	})
	assert.True(t, errors.Is(err, model.DimensionMismatchErr))
	assert.Equal(t, []int{1, 1}, s.Counts())

	require.NoError(t, s.Replace([]model.Example{
		{Embedding: model.Embedding{1, 1}, Label: 1},
	}))
	assert.Equal(t, []int{0, 1}, s.Counts())
	assert.Equal(t, 2, s.Dataset().Dim())
}
