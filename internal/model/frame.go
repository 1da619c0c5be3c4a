package model

import (
	"context"
	"image"
)

// FeatureExtractor maps a frame to its embedding through a frozen model.
type FeatureExtractor interface {
	Embed(ctx context.Context, img image.Image) (Embedding, error)
}

// FrameSource produces frames on demand.
// Implementations return CaptureUnavailableErr when no frame can be produced.
type FrameSource interface {
	Capture(ctx context.Context) (image.Image, error)
}
