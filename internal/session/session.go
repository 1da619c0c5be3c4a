package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/drakos74/free-learn/internal/config"
	"github.com/drakos74/free-learn/internal/math/ml"
	"github.com/drakos74/free-learn/internal/metrics"
	"github.com/drakos74/free-learn/internal/model"
	"github.com/drakos74/free-learn/internal/predict"
	"github.com/drakos74/free-learn/internal/storage"
	"github.com/drakos74/free-learn/internal/store"
	learntime "github.com/drakos74/free-learn/internal/time"
	"github.com/drakos74/free-learn/internal/train"
)

// Option configures a session.
type Option func(s *Session)

// WithPersistence keeps the recorded examples in the given storage.
// The examples are restored when the session is created and saved whenever a recording stops.
func WithPersistence(persistence storage.Persistence) Option {
	return func(s *Session) {
		s.persistence = persistence
	}
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// Session drives the record, train and predict cycle for a fixed label set.
type Session struct {
	mutex       *sync.Mutex
	id          string
	cfg         config.Config
	labels      model.Labels
	extractor   model.FeatureExtractor
	source      model.FrameSource
	store       *store.Store
	classifier  *ml.Classifier
	persistence storage.Persistence
	state       State
	cancel      context.CancelFunc
	done        chan struct{}
}

// New creates an idle session.
func New(cfg config.Config, extractor model.FeatureExtractor, source model.FrameSource, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if extractor == nil || source == nil {
		return nil, fmt.Errorf("session needs a feature extractor and a frame source: %w", model.InvalidConfigErr)
	}
	labels, err := cfg.LabelSet()
	if err != nil {
		return nil, err
	}
	s := &Session{
		mutex:     new(sync.Mutex),
		id:        uuid.New().String(),
		cfg:       cfg,
		labels:    labels,
		extractor: extractor,
		source:    source,
		store:     store.New(labels),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.persistence != nil {
		err := s.store.Load(s.persistence)
		if err != nil && !errors.Is(err, storage.NotFoundErr) {
			return nil, err
		}
	}
	log.Info().
		Str("session", s.id).
		Strs("labels", labels).
		Int("examples", s.store.Size()).
		Msg("created session")
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Labels returns the label set of the session.
func (s *Session) Labels() model.Labels {
	return s.labels
}

// State returns the current activity.
func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// Counts returns the number of recorded examples per label.
func (s *Session) Counts() []int {
	return s.store.Counts()
}

// Size returns the number of recorded examples.
func (s *Session) Size() int {
	return s.store.Size()
}

// Dataset returns the current view of the recorded examples.
func (s *Session) Dataset() store.Dataset {
	return s.store.View()
}

// Classifier returns the fitted classifier, or nil before the first successful training.
func (s *Session) Classifier() *ml.Classifier {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.classifier
}

// acquire moves an idle session to the given state.
func (s *Session) acquire(state State) error {
	if s.state != Idle {
		return fmt.Errorf("cannot start %s while %s: %w", state, s.state, model.BusyErr)
	}
	s.state = state
	log.Info().Str("session", s.id).Str("state", state.String()).Msg("state change")
	return nil
}

func (s *Session) release() {
	s.state = Idle
	s.cancel = nil
	s.done = nil
	log.Info().Str("session", s.id).Str("state", Idle.String()).Msg("state change")
}

// StartRecording captures, embeds and stores a frame for the label at every tick,
// until StopRecording is called or the context is done.
func (s *Session) StartRecording(ctx context.Context, label model.Label) error {
	if !s.labels.Valid(label) {
		return fmt.Errorf("label %d outside of %v: %w", label, s.labels, model.InvalidLabelErr)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.acquire(Recording); err != nil {
		return err
	}
	name := s.labels.Name(label)
	s.loop(ctx, Recording.String(), func(ctx context.Context, b backoff.BackOff) time.Duration {
		e, delay, ok := s.capture(ctx, Recording.String(), b)
		if !ok {
			return delay
		}
		if err := s.store.Add(e, label); err != nil {
			metrics.Observer.Failure(s.id, Recording.String())
			log.Warn().Err(err).Str("session", s.id).Str("label", name).Msg("could not add example")
			return 0
		}
		metrics.Observer.Example(s.id, name)
		return 0
	})
	log.Info().Str("session", s.id).Str("label", name).Msg("recording started")
	return nil
}

// StopRecording stops the recording loop and persists the examples.
// It is a no-op if the session is not recording.
func (s *Session) StopRecording() error {
	if !s.stop(Recording) {
		return nil
	}
	log.Info().
		Str("session", s.id).
		Int("examples", s.store.Size()).
		Ints("counts", s.store.Counts()).
		Msg("recording stopped")
	return s.save()
}

// Import adds already embedded examples, like the labeled files of a directory.
// Either all examples are added or none.
func (s *Session) Import(examples []model.Example) error {
	return s.load(examples, true)
}

// Replace swaps the recorded examples for the given ones.
// The current examples are kept if any of the given ones is rejected.
func (s *Session) Replace(examples []model.Example) error {
	return s.load(examples, false)
}

func (s *Session) load(examples []model.Example, keep bool) error {
	s.mutex.Lock()
	if err := s.acquire(Recording); err != nil {
		s.mutex.Unlock()
		return err
	}
	s.mutex.Unlock()

	err := s.merge(examples, keep)

	s.mutex.Lock()
	s.release()
	s.mutex.Unlock()

	if err != nil {
		return err
	}
	for _, e := range examples {
		metrics.Observer.Example(s.id, s.labels.Name(e.Label))
	}
	return s.save()
}

// merge builds the new dataset aside and restores it into the store only if every example is valid.
func (s *Session) merge(examples []model.Example, keep bool) error {
	next := store.New(s.labels)
	if keep {
		if err := next.Restore(s.store.Snapshot()); err != nil {
			return err
		}
	}
	for i, e := range examples {
		if err := next.Add(e.Embedding, e.Label); err != nil {
			return fmt.Errorf("could not import example %d: %w", i, err)
		}
	}
	return s.store.Restore(next.Snapshot())
}

// Train fits a new classifier on all recorded examples.
// The previous classifier is kept if training fails.
func (s *Session) Train(ctx context.Context, sink train.Sink) error {
	s.mutex.Lock()
	if err := s.acquire(Training); err != nil {
		s.mutex.Unlock()
		return err
	}
	s.mutex.Unlock()

	observe := train.SinkFunc(func(p model.Progress) {
		metrics.Observer.Batch(s.id, p.Loss)
	})
	classifier, err := train.Train(ctx, s.store.View(), s.cfg.Train, train.Multi(observe, sink))

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err == nil {
		s.classifier = classifier
	}
	s.release()
	return err
}

// StartPredicting captures, embeds and classifies a frame at every tick,
// reporting the smoothed prediction to out, until StopPredicting is called or the context is done.
func (s *Session) StartPredicting(ctx context.Context, out func(p model.Prediction)) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.classifier == nil {
		return fmt.Errorf("train the session before predicting: %w", model.NotTrainedErr)
	}
	if err := s.acquire(Predicting); err != nil {
		return err
	}
	classifier := s.classifier
	smoother := predict.NewSmoother(s.labels, s.cfg.Session.SmoothingWindow)
	s.loop(ctx, Predicting.String(), func(ctx context.Context, b backoff.BackOff) time.Duration {
		e, delay, ok := s.capture(ctx, Predicting.String(), b)
		if !ok {
			return delay
		}
		p, err := predict.Predict(classifier, s.labels, e)
		if err != nil {
			metrics.Observer.Failure(s.id, Predicting.String())
			log.Warn().Err(err).Str("session", s.id).Msg("could not predict")
			return 0
		}
		p = smoother.Push(p)
		metrics.Observer.Prediction(s.id, p.Name)
		if out != nil {
			out(p)
		}
		return 0
	})
	log.Info().Str("session", s.id).Msg("predicting started")
	return nil
}

// StopPredicting stops the predicting loop.
// It is a no-op if the session is not predicting.
func (s *Session) StopPredicting() {
	if s.stop(Predicting) {
		log.Info().Str("session", s.id).Msg("predicting stopped")
	}
}

// Close stops any running loop.
func (s *Session) Close() error {
	s.StopPredicting()
	return s.StopRecording()
}

// loop starts the ticker driven execution for the current state.
// It must be called with the mutex held.
func (s *Session) loop(ctx context.Context, process string, tick func(ctx context.Context, b backoff.BackOff) time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.Session.TickInterval.Duration
	b.MaxInterval = s.cfg.Session.MaxBackoff.Duration
	b.MaxElapsedTime = 0
	b.Reset()

	learntime.Execute(ctx, s.cfg.Session.TickInterval.Duration, func() time.Duration {
		if ctx.Err() != nil {
			return 0
		}
		return tick(ctx, b)
	}, func() {
		close(done)
		s.mutex.Lock()
		// a loop ending without a stop request was cancelled by the caller context
		expired := s.done == done && s.cancel != nil
		if expired {
			s.release()
		}
		s.mutex.Unlock()
		log.Debug().Str("session", s.id).Str("process", process).Bool("expired", expired).Msg("loop exited")
		if expired && process == Recording.String() {
			if err := s.save(); err != nil {
				log.Error().Err(err).Str("session", s.id).Msg("could not save examples")
			}
		}
	})
}

// stop cancels the loop of the given state and waits for it to exit.
func (s *Session) stop(state State) bool {
	s.mutex.Lock()
	if s.state != state || s.cancel == nil {
		s.mutex.Unlock()
		return false
	}
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mutex.Unlock()

	cancel()
	<-done

	s.mutex.Lock()
	s.release()
	s.mutex.Unlock()
	return true
}

// capture grabs a frame and embeds it.
// A failed capture returns the backoff delay before the next attempt.
func (s *Session) capture(ctx context.Context, process string, b backoff.BackOff) (model.Embedding, time.Duration, bool) {
	img, err := s.source.Capture(ctx)
	if err != nil {
		return nil, s.skip(ctx, process, err, b), false
	}
	e, err := s.extractor.Embed(ctx, img)
	if err != nil {
		return nil, s.skip(ctx, process, err, b), false
	}
	b.Reset()
	return e, 0, true
}

func (s *Session) skip(ctx context.Context, process string, err error, b backoff.BackOff) time.Duration {
	if ctx.Err() != nil {
		return 0
	}
	metrics.Observer.Failure(s.id, process)
	if !errors.Is(err, model.CaptureUnavailableErr) {
		log.Warn().Err(err).Str("session", s.id).Str("process", process).Msg("skipping frame")
		return 0
	}
	delay := b.NextBackOff()
	if delay == backoff.Stop || delay > s.cfg.Session.MaxBackoff.Duration {
		delay = s.cfg.Session.MaxBackoff.Duration
	}
	log.Warn().Err(err).Str("session", s.id).Str("process", process).Dur("backoff", delay).Msg("capture unavailable")
	return delay
}

func (s *Session) save() error {
	if s.persistence == nil {
		return nil
	}
	if err := s.store.Save(s.persistence); err != nil {
		return err
	}
	return nil
}
