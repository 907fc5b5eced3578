package mask

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"manet/pkg/errs"
	"manet/pkg/ndarray"
)

// Resize resamples a 2D binary mask to rows x cols with nearest-neighbour
// interpolation. The result only holds 0 and 1.
func Resize(m *ndarray.Array, rows, cols int) (*ndarray.Array, error) {
	if err := AssertNDim(m, "mask", 2); err != nil {
		return nil, err
	}
	if err := AssertBinary(m, "mask"); err != nil {
		return nil, err
	}
	if rows <= 0 || cols <= 0 {
		return nil, errs.Invalid("output shape (%d, %d) must be positive", rows, cols)
	}

	shape := m.Shape()
	src := image.NewGray(image.Rect(0, 0, shape[1], shape[0]))
	for r := 0; r < shape[0]; r++ {
		for c := 0; c < shape[1]; c++ {
			if m.At(r, c) != 0 {
				src.SetGray(c, r, color.Gray{Y: 255})
			}
		}
	}

	dst := imaging.Resize(src, cols, rows, imaging.NearestNeighbor)

	out := ndarray.New(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if dst.NRGBAAt(c, r).R > 127 {
				out.Set(1, r, c)
			}
		}
	}
	return out, nil
}
