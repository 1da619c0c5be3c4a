package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/drakos74/free-learn/internal/model"
	"github.com/drakos74/free-learn/internal/storage"
	"github.com/drakos74/free-learn/internal/storage/file/json"
)

func newLabels(t *testing.T, names ...string) model.Labels {
	labels, err := model.NewLabels(names...)
	require.NoError(t, err)
	return labels
}

func TestStore_Add(t *testing.T) {
	labels := newLabels(t, "circle", "triangle", "square")
	s := New(labels)

	rnd := rand.New(rand.NewSource(1))
	added := make([]model.Label, 0)
	for i := 0; i < 100; i++ {
		label := model.Label(rnd.Intn(labels.Size()))
		err := s.Add(model.Embedding{float64(i), 1, 2}, label)
		require.NoError(t, err)
		added = append(added, label)

		ds := s.View()
		xr, xc := ds.X.Dims()
		yr, yc := ds.Y.Dims()
		assert.Equal(t, i+1, xr)
		assert.Equal(t, xr, yr)
		assert.Equal(t, 3, xc)
		assert.Equal(t, labels.Size(), yc)
		assert.Equal(t, i+1, ds.Size())
	}

	ds := s.View()
	expected := make([]int, labels.Size())
	for i, label := range added {
		expected[label]++
		for j := 0; j < labels.Size(); j++ {
			if j == int(label) {
				assert.Equal(t, 1.0, ds.Y.At(i, j))
			} else {
				assert.Equal(t, 0.0, ds.Y.At(i, j))
			}
		}
		assert.Equal(t, float64(i), ds.X.At(i, 0))
		assert.Equal(t, label, ds.Labels[i])
	}
	assert.Equal(t, expected, s.Counts())
	for l, c := range expected {
		assert.Equal(t, c, s.Count(model.Label(l)))
	}
}

func TestStore_AddInvalid(t *testing.T) {
	s := New(newLabels(t, "left", "right"))
	require.NoError(t, s.Add(model.Embedding{1, 0}, 0))

	type test struct {
		embedding model.Embedding
		label     model.Label
		err       error
	}

	tests := map[string]test{
		"negative-label": {
			embedding: model.Embedding{1, 0},
			label:     -1,
			err:       model.InvalidLabelErr,
		},
		"label-out-of-range": {
			embedding: model.Embedding{1, 0},
			label:     2,
			err:       model.InvalidLabelErr,
		},
		"empty-embedding": {
			embedding: model.Embedding{},
			label:     0,
			err:       model.DimensionMismatchErr,
		},
		"wrong-dimension": {
			embedding: model.Embedding{1, 0, 0},
			label:     1,
			err:       model.DimensionMismatchErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := s.Add(tt.embedding, tt.label)
			assert.True(t, errors.Is(err, tt.err))
			assert.Equal(t, 1, s.Size())
			assert.Equal(t, []int{1, 0}, s.Counts())
		})
	}
}

func TestStore_ViewIsStable(t *testing.T) {
	s := New(newLabels(t, "left", "right"))
	require.NoError(t, s.Add(model.Embedding{1, 2}, 0))
	view := s.View()

	for i := 0; i < 50; i++ {
		require.NoError(t, s.Add(model.Embedding{3, 4}, 1))
	}

	r, _ := view.X.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, []float64{1, 2}, view.X.RawRowView(0))
	assert.Equal(t, []float64{1, 0}, view.Y.RawRowView(0))
	assert.Equal(t, 51, s.View().Size())
}

func TestStore_EmptyView(t *testing.T) {
	s := New(newLabels(t, "left", "right"))
	ds := s.View()
	assert.Equal(t, 0, ds.Size())
	assert.Equal(t, 0, ds.Dim())
	assert.Nil(t, ds.X)
}

func TestStore_SnapshotRestore(t *testing.T) {
	labels := newLabels(t, "left", "right")
	s := New(labels)
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Add(model.Embedding{float64(i), 0, 1}, model.Label(i%2)))
	}

	restored := New(labels)
	require.NoError(t, restored.Restore(s.Snapshot()))
	assert.Equal(t, s.Counts(), restored.Counts())
	assert.Equal(t, s.View().X.RawMatrix().Data, restored.View().X.RawMatrix().Data)
	assert.Equal(t, s.View().Y.RawMatrix().Data, restored.View().Y.RawMatrix().Data)

	// a broken snapshot leaves the store as it was
	broken := s.Snapshot()
	broken.Targets[3] = 5
	err := restored.Restore(broken)
	assert.True(t, errors.Is(err, model.InvalidLabelErr))
	assert.Equal(t, 10, restored.Size())

	other := New(newLabels(t, "up", "down"))
	err = other.Restore(s.Snapshot())
	assert.Error(t, err)
	assert.Equal(t, 0, other.Size())
}

func TestStore_SaveLoad(t *testing.T) {
	labels := newLabels(t, "left", "right")
	persistence := json.NewLocalStorage()

	s := New(labels)
	err := s.Load(persistence)
	assert.True(t, errors.Is(err, storage.NotFoundErr))

	for i := 0; i < 6; i++ {
		require.NoError(t, s.Add(model.Embedding{float64(i), 1}, model.Label(i%2)))
	}
	require.NoError(t, s.Save(persistence))

	loaded := New(labels)
	require.NoError(t, loaded.Load(persistence))
	assert.Equal(t, []int{3, 3}, loaded.Counts())
	assert.Equal(t, 2, loaded.Dim())
	assert.Equal(t, s.View().X.RawMatrix().Data, loaded.View().X.RawMatrix().Data)
}
