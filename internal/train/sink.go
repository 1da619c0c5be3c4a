package train

import (
	"github.com/rs/zerolog/log"

	"github.com/drakos74/free-learn/internal/model"
)

// Sink receives the progress of a training run, once per batch and in batch order.
// The trainer waits for OnBatchComplete to return before starting the next batch.
type Sink interface {
	OnBatchComplete(p model.Progress)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(p model.Progress)

// OnBatchComplete calls the function.
func (f SinkFunc) OnBatchComplete(p model.Progress) {
	f(p)
}

// ChannelSink forwards the progress to a channel.
// Sending blocks, so a slow consumer slows down training instead of missing reports.
type ChannelSink chan<- model.Progress

// OnBatchComplete sends the progress on the channel.
func (c ChannelSink) OnBatchComplete(p model.Progress) {
	c <- p
}

// Multi fans out the progress to all given sinks, skipping nil ones.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(p model.Progress) {
		for _, s := range sinks {
			if s != nil {
				s.OnBatchComplete(p)
			}
		}
	})
}

// LogSink logs every batch report.
var LogSink Sink = SinkFunc(func(p model.Progress) {
	log.Debug().
		Int("epoch", p.Epoch).
		Int("batch", p.Batch).
		Int("batches", p.Batches).
		Float64("loss", p.Loss).
		Float64("accuracy", p.Accuracy).
		Msg("batch complete")
})
