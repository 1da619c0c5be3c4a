package frame

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Tensor is a dense multi-dimensional array in row major order.
type Tensor struct {
	Shape []int
	Data  []float64
}

// Size returns the number of elements implied by the shape.
func (t Tensor) Size() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := 1
	for _, s := range t.Shape {
		n *= s
	}
	return n
}

func (t Tensor) String() string {
	return fmt.Sprintf("tensor%v", t.Shape)
}

// Normalize maps a channel value from [0,255] to roughly [-1,1].
func Normalize(v uint8) float64 {
	return float64(v)/127 - 1
}

// Preprocess resizes the image to size x size and normalizes every channel.
// The resulting tensor has shape [size, size, 3], or [size, size, 1] for gray scale.
func Preprocess(img image.Image, size int, gray bool) Tensor {
	if gray {
		img = imaging.Grayscale(img)
	}
	resized := imaging.Resize(img, size, size, imaging.Linear)

	channels := 3
	if gray {
		channels = 1
	}
	data := make([]float64, 0, size*size*channels)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := resized.PixOffset(x, y)
			pix := resized.Pix[i : i+3]
			if gray {
				data = append(data, Normalize(pix[0]))
				continue
			}
			data = append(data, Normalize(pix[0]), Normalize(pix[1]), Normalize(pix[2]))
		}
	}
	return Tensor{
		Shape: []int{size, size, channels},
		Data:  data,
	}
}
