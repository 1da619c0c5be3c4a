package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	coremath "github.com/drakos74/free-learn/internal/math"
	"github.com/drakos74/free-learn/internal/model"
	"github.com/drakos74/free-learn/internal/storage"
)

// Dataset is a read-only view of the recorded examples.
// Row i of X pairs with row i of Y, and with Labels[i].
type Dataset struct {
	// X holds one embedding per row.
	X *mat.Dense
	// Y holds the one-hot encoded label per row.
	Y *mat.Dense
	// Labels holds the raw labels.
	Labels []model.Label
	// Classes is the size of the label set.
	Classes int
}

// Size returns the number of examples.
func (d Dataset) Size() int {
	return len(d.Labels)
}

// Dim returns the embedding length, or 0 for an empty dataset.
func (d Dataset) Dim() int {
	if d.X == nil {
		return 0
	}
	_, c := d.X.Dims()
	return c
}

// Embedding returns the embedding at index i.
func (d Dataset) Embedding(i int) model.Embedding {
	return d.X.RawRowView(i)
}

// Store accumulates labeled embeddings.
// The embeddings and the one-hot labels are kept in two flat, append-only sequences,
// so that views share the underlying arrays without copying.
type Store struct {
	mutex  *sync.RWMutex
	labels model.Labels
	dim    int
	x      []float64
	y      []float64
	l      []model.Label
	counts []int
}

// New creates an empty store for the given label set.
func New(labels model.Labels) *Store {
	return &Store{
		mutex:  new(sync.RWMutex),
		labels: labels,
		counts: make([]int, labels.Size()),
	}
}

// Add appends one example.
// A rejected example leaves the store untouched.
func (s *Store) Add(embedding model.Embedding, label model.Label) error {
	if !s.labels.Valid(label) {
		return fmt.Errorf("label %d outside of [0,%d): %w", label, s.labels.Size(), model.InvalidLabelErr)
	}
	if embedding.Dim() == 0 {
		return fmt.Errorf("empty embedding: %w", model.DimensionMismatchErr)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.dim > 0 && embedding.Dim() != s.dim {
		return fmt.Errorf("expected embedding of %d, got %d: %w", s.dim, embedding.Dim(), model.DimensionMismatchErr)
	}
	if s.dim == 0 {
		s.dim = embedding.Dim()
	}

	s.x = append(s.x, embedding...)
	s.y = append(s.y, coremath.OneHot(int(label), s.labels.Size())...)
	s.l = append(s.l, label)
	s.counts[label]++
	return nil
}

// Size returns the number of examples.
func (s *Store) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.l)
}

// Dim returns the embedding length, or 0 if nothing was recorded yet.
func (s *Store) Dim() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.dim
}

// Count returns the number of examples for the label.
func (s *Store) Count(label model.Label) int {
	if !s.labels.Valid(label) {
		return 0
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.counts[label]
}

// Counts returns the number of examples per label.
func (s *Store) Counts() []int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	counts := make([]int, len(s.counts))
	copy(counts, s.counts)
	return counts
}

// View returns the current dataset.
// The matrices share the store arrays; rows visible in a view never change with later additions.
func (s *Store) View() Dataset {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	n := len(s.l)
	k := s.labels.Size()
	ds := Dataset{
		Labels:  s.l[:n:n],
		Classes: k,
	}
	if n == 0 {
		return ds
	}
	ds.X = mat.NewDense(n, s.dim, s.x[:n*s.dim:n*s.dim])
	ds.Y = mat.NewDense(n, k, s.y[:n*k:n*k])
	return ds
}

// Snapshot is the serialisable form of the store.
type Snapshot struct {
	Labels     model.Labels  `json:"labels"`
	Dim        int           `json:"dim"`
	Embeddings [][]float64   `json:"embeddings"`
	Targets    []model.Label `json:"targets"`
}

// Snapshot copies the current examples.
func (s *Store) Snapshot() Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	embeddings := make([][]float64, len(s.l))
	for i := range s.l {
		e := make([]float64, s.dim)
		copy(e, s.x[i*s.dim:(i+1)*s.dim])
		embeddings[i] = e
	}
	targets := make([]model.Label, len(s.l))
	copy(targets, s.l)
	return Snapshot{
		Labels:     s.labels,
		Dim:        s.dim,
		Embeddings: embeddings,
		Targets:    targets,
	}
}

// Restore replaces the store content with the snapshot.
// The snapshot is validated completely before anything is replaced.
func (s *Store) Restore(snapshot Snapshot) error {
	if strings.Join(snapshot.Labels, ",") != strings.Join(s.labels, ",") {
		return fmt.Errorf("snapshot labels %v do not match %v: %w", snapshot.Labels, s.labels, model.InvalidLabelErr)
	}
	if len(snapshot.Embeddings) != len(snapshot.Targets) {
		return fmt.Errorf("snapshot is not aligned [ %d | %d ]: %w", len(snapshot.Embeddings), len(snapshot.Targets), model.DimensionMismatchErr)
	}
	k := s.labels.Size()
	x := make([]float64, 0, len(snapshot.Embeddings)*snapshot.Dim)
	y := make([]float64, 0, len(snapshot.Targets)*k)
	l := make([]model.Label, 0, len(snapshot.Targets))
	counts := make([]int, k)
	for i, e := range snapshot.Embeddings {
		if len(e) != snapshot.Dim || snapshot.Dim == 0 {
			return fmt.Errorf("snapshot embedding %d has %d values, expected %d: %w", i, len(e), snapshot.Dim, model.DimensionMismatchErr)
		}
		label := snapshot.Targets[i]
		if !s.labels.Valid(label) {
			return fmt.Errorf("snapshot label %d at %d: %w", label, i, model.InvalidLabelErr)
		}
		x = append(x, e...)
		y = append(y, coremath.OneHot(int(label), k)...)
		l = append(l, label)
		counts[label]++
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.dim = snapshot.Dim
	if len(l) == 0 {
		s.dim = 0
	}
	s.x = x
	s.y = y
	s.l = l
	s.counts = counts
	return nil
}

// Key returns the storage key for the datasets of the label set.
func Key(labels model.Labels) storage.Key {
	return storage.Key{
		Name:  "dataset",
		Label: strings.Join(labels, "-"),
	}
}

// Save stores a snapshot of the examples.
func (s *Store) Save(persistence storage.Persistence) error {
	snapshot := s.Snapshot()
	if err := persistence.Store(Key(s.labels), snapshot); err != nil {
		return fmt.Errorf("could not save dataset: %w", err)
	}
	log.Debug().
		Strs("labels", s.labels).
		Int("examples", len(snapshot.Targets)).
		Msg("saved dataset")
	return nil
}

// Load restores the examples from the persistence layer.
func (s *Store) Load(persistence storage.Persistence) error {
	var snapshot Snapshot
	if err := persistence.Load(Key(s.labels), &snapshot); err != nil {
		return fmt.Errorf("could not load dataset: %w", err)
	}
	if err := s.Restore(snapshot); err != nil {
		return fmt.Errorf("could not restore dataset: %w", err)
	}
	log.Info().
		Strs("labels", s.labels).
		Int("examples", len(snapshot.Targets)).
		Ints("counts", s.Counts()).
		Msg("loaded dataset")
	return nil
}
