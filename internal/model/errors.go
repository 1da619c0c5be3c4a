package model

import "errors"

var (
	// InvalidLabelErr is returned for a label outside of the configured label set.
	InvalidLabelErr = errors.New("invalid label")
	// EmptyDatasetErr is returned when training is requested without any recorded examples.
	EmptyDatasetErr = errors.New("empty dataset")
	// NotTrainedErr is returned when a prediction is requested before a successful training run.
	NotTrainedErr = errors.New("not trained")
	// CaptureUnavailableErr is returned by frame sources that cannot produce a frame.
	CaptureUnavailableErr = errors.New("capture unavailable")
	// DimensionMismatchErr is returned for embeddings that do not match the expected length.
	DimensionMismatchErr = errors.New("dimension mismatch")
	// BusyErr is returned when an operation is requested while the session is not idle.
	BusyErr = errors.New("session busy")
	// InvalidConfigErr is returned for configuration values out of their allowed range.
	InvalidConfigErr = errors.New("invalid config")
)
