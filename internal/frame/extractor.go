package frame

import (
	"context"
	"fmt"
	"image"

	"github.com/drakos74/free-learn/internal/model"
)

// PixelExtractor uses the down-sampled pixels of the frame as its embedding.
// It stands in for a pretrained backbone when the frames are simple enough,
// like doodles of geometric shapes.
type PixelExtractor struct {
	Size int
	Gray bool
}

// NewPixelExtractor creates a new pixel extractor.
func NewPixelExtractor(size int, gray bool) PixelExtractor {
	return PixelExtractor{
		Size: size,
		Gray: gray,
	}
}

// Dim returns the length of the produced embeddings.
func (p PixelExtractor) Dim() int {
	if p.Gray {
		return p.Size * p.Size
	}
	return p.Size * p.Size * 3
}

// Embed preprocesses the frame and flattens it.
func (p PixelExtractor) Embed(ctx context.Context, img image.Image) (model.Embedding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("no frame to embed")
	}
	if p.Size <= 0 {
		return nil, fmt.Errorf("invalid frame size %d: %w", p.Size, model.InvalidConfigErr)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("empty frame %v", b)
	}
	return Preprocess(img, p.Size, p.Gray).Data, nil
}
