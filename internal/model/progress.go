package model

import (
	"fmt"
	"math"
)

// Progress is the report emitted after every training batch.
// Batch is the index of the batch within the current epoch,
// Step counts batches across all epochs.
type Progress struct {
	Epoch     int     `json:"epoch"`
	Batch     int     `json:"batch"`
	Batches   int     `json:"batches"`
	Step      int     `json:"step"`
	BatchSize int     `json:"batch_size"`
	Loss      float64 `json:"loss"`
	Accuracy  float64 `json:"accuracy"`
	// Anomaly marks a non finite loss value.
	Anomaly bool `json:"anomaly"`
}

// NewProgress creates a progress report and flags numerical anomalies of the loss.
func NewProgress(epoch, batch, batches, step, size int, loss, accuracy float64) Progress {
	return Progress{
		Epoch:     epoch,
		Batch:     batch,
		Batches:   batches,
		Step:      step,
		BatchSize: size,
		Loss:      loss,
		Accuracy:  accuracy,
		Anomaly:   math.IsNaN(loss) || math.IsInf(loss, 0),
	}
}

func (p Progress) String() string {
	return fmt.Sprintf("Epoch %d Batch %d of %d complete. Loss: %.4f Accuracy: %.4f", p.Epoch, p.Batch, p.Batches, p.Loss, p.Accuracy)
}
