package train

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/drakos74/free-learn/internal/buffer"
	coremath "github.com/drakos74/free-learn/internal/math"
	"github.com/drakos74/free-learn/internal/math/ml"
	"github.com/drakos74/free-learn/internal/model"
	"github.com/drakos74/free-learn/internal/store"
)

// Train fits a new classifier on the dataset.
// All examples are used for training, there is no holdout.
// The sink receives one report per batch, epochs * ceil(N/batchSize) in total.
// A non finite loss is reported as an anomaly and training carries on.
func Train(ctx context.Context, ds store.Dataset, cfg Config, sink Sink) (*ml.Classifier, error) {
	n := ds.Size()
	if n == 0 {
		return nil, fmt.Errorf("nothing to train on, add some examples first: %w", model.EmptyDatasetErr)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = LogSink
	}

	size := coremath.BatchSize(n, cfg.BatchSizeFraction)
	batches := coremath.Batches(n, size)

	classifier, err := ml.NewClassifier(ds.Dim(), cfg.HiddenUnits, ds.Classes, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("could not create classifier: %w", err)
	}
	opt := ml.NewAdam(cfg.LearningRate)

	rnd := rand.New(rand.NewSource(cfg.Seed))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	start := time.Now()
	var step, anomalies int
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if cfg.Shuffle {
			rnd.Shuffle(n, func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		}
		loss := buffer.NewStats()
		accuracy := buffer.NewStats()
		for b := 0; b < batches; b++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("training interrupted at epoch %d batch %d: %w", epoch, b, err)
			}
			lo := b * size
			hi := lo + size
			if hi > n {
				hi = n
			}
			x, y := batch(ds, order[lo:hi], cfg.Shuffle)
			l, a, err := classifier.Fit(x, y, opt)
			if err != nil {
				return nil, fmt.Errorf("could not fit batch %d of epoch %d: %w", b, epoch, err)
			}
			p := model.NewProgress(epoch, b, batches, step, hi-lo, l, a)
			if p.Anomaly {
				anomalies++
				log.Warn().
					Int("epoch", epoch).
					Int("batch", b).
					Float64("loss", l).
					Msg("non finite loss")
			}
			loss.Push(l)
			accuracy.Push(a)
			sink.OnBatchComplete(p)
			step++
		}
		log.Debug().
			Int("epoch", epoch).
			Float64("loss", loss.Avg()).
			Float64("last-loss", loss.Last()).
			Float64("accuracy", accuracy.Avg()).
			Int("anomalies", loss.Invalid()).
			Msg("epoch complete")
	}

	log.Info().
		Int("examples", n).
		Int("dim", ds.Dim()).
		Int("classes", ds.Classes).
		Int("epochs", cfg.Epochs).
		Int("batch-size", size).
		Int("steps", opt.Steps()).
		Float64("learning-rate", opt.Rate()).
		Int("anomalies", anomalies).
		Dur("duration", time.Since(start)).
		Msg("training complete")

	return classifier, nil
}

// batch collects the rows of the given indexes.
// Without shuffling the indexes are contiguous and the batch is a view on the dataset.
func batch(ds store.Dataset, idx []int, shuffled bool) (mat.Matrix, mat.Matrix) {
	if !shuffled {
		lo := idx[0]
		hi := idx[len(idx)-1] + 1
		return ds.X.Slice(lo, hi, 0, ds.Dim()), ds.Y.Slice(lo, hi, 0, ds.Classes)
	}
	x := mat.NewDense(len(idx), ds.Dim(), nil)
	y := mat.NewDense(len(idx), ds.Classes, nil)
	for i, j := range idx {
		x.SetRow(i, ds.X.RawRowView(j))
		y.SetRow(i, ds.Y.RawRowView(j))
	}
	return x, y
}
