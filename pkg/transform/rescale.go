package transform

import (
	"math"

	"golang.org/x/exp/rand"

	"manet/pkg/errs"
	"manet/pkg/mask"
	"manet/pkg/ndarray"
)

// Rescale2D resizes a by zoom along both axes. The output shape is the input
// shape times zoom, rounded, and at least one pixel per axis. When shrinking, the
// input is first smoothed with a Gaussian of sigma (1/zoom - 1)/2 to limit
// aliasing.
func Rescale2D(a *ndarray.Array, zoom float64) (*ndarray.Array, error) {
	if err := mask.AssertNDim(a, "array", 2); err != nil {
		return nil, err
	}
	if zoom <= 0 || math.IsInf(zoom, 0) || math.IsNaN(zoom) {
		return nil, errs.Invalid("zoom %g must be positive", zoom)
	}

	src := a
	if zoom < 1 {
		src = gaussian(a, (1/zoom-1)/2)
	}

	shape := a.Shape()
	rows := max(1, int(math.Round(float64(shape[0])*zoom)))
	cols := max(1, int(math.Round(float64(shape[1])*zoom)))
	sy := float64(shape[0]) / float64(rows)
	sx := float64(shape[1]) / float64(cols)

	out := ndarray.New(rows, cols)
	for r := 0; r < rows; r++ {
		y := clamp((float64(r)+0.5)*sy-0.5, 0, float64(shape[0]-1))
		for c := 0; c < cols; c++ {
			x := clamp((float64(c)+0.5)*sx-0.5, 0, float64(shape[1]-1))
			out.Set(bilinear(src, y, x), r, c)
		}
	}
	return out, nil
}

// RandomRescale2D rescales a by a zoom drawn uniformly from
// [1-zoomPerc, 1+zoomPerc]. zoomPerc must lie in [0, 1].
func RandomRescale2D(a *ndarray.Array, zoomPerc float64, src rand.Source) (*ndarray.Array, float64, error) {
	if zoomPerc < 0 || zoomPerc > 1 {
		return nil, 0, errs.Invalid("zoom percentage %g should be in [0, 1]", zoomPerc)
	}
	zoom := 1 - zoomPerc + 2*zoomPerc*newRand(src).Float64()
	out, err := Rescale2D(a, zoom)
	if err != nil {
		return nil, 0, err
	}
	return out, zoom, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// gaussian smooths a 2D array with a separable kernel truncated at 4 sigma.
// Borders replicate the edge pixel.
func gaussian(a *ndarray.Array, sigma float64) *ndarray.Array {
	if sigma <= 0 {
		return a
	}
	radius := int(math.Ceil(4 * sigma))
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	shape := a.Shape()
	rows, cols := shape[0], shape[1]
	tmp := ndarray.New(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := 0.0
			for k, w := range kernel {
				cc := min(cols-1, max(0, c+k-radius))
				v += w * a.At(r, cc)
			}
			tmp.Set(v, r, c)
		}
	}
	out := ndarray.New(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := 0.0
			for k, w := range kernel {
				rr := min(rows-1, max(0, r+k-radius))
				v += w * tmp.At(rr, c)
			}
			out.Set(v, r, c)
		}
	}
	return out
}
