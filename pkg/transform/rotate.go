// Package transform implements random 2D augmentations of arrays.
//
// Both transforms resample with bilinear interpolation and return the drawn
// parameter along with the result so a caller can apply the same transform to a
// paired mask.
package transform

import (
	"math"

	"golang.org/x/exp/rand"

	"manet/pkg/errs"
	"manet/pkg/mask"
	"manet/pkg/ndarray"
)

// Rotate2D rotates a counter-clockwise by angle degrees about its center. The
// output has the shape of a; pixels that map from outside a are 0.
func Rotate2D(a *ndarray.Array, angle float64) (*ndarray.Array, error) {
	if err := mask.AssertNDim(a, "array", 2); err != nil {
		return nil, err
	}
	shape := a.Shape()
	rows, cols := shape[0], shape[1]
	cy := float64(rows)/2 - 0.5
	cx := float64(cols)/2 - 0.5

	theta := angle * math.Pi / 180
	sin, cos := math.Sincos(theta)

	out := ndarray.New(rows, cols)
	for r := 0; r < rows; r++ {
		yn := float64(r) - cy
		for c := 0; c < cols; c++ {
			xn := float64(c) - cx
			x := cos*xn - sin*yn + cx
			y := sin*xn + cos*yn + cy
			out.Set(bilinear(a, y, x), r, c)
		}
	}
	return out, nil
}

// RandomRotate2D rotates a by an integer angle drawn uniformly from
// [-angleRange, angleRange) and returns the rotated array and the angle.
func RandomRotate2D(a *ndarray.Array, angleRange int, src rand.Source) (*ndarray.Array, int, error) {
	if angleRange < 0 {
		return nil, 0, errs.Invalid("angle range %d must not be negative", angleRange)
	}
	angle := 0
	if angleRange > 0 {
		angle = newRand(src).Intn(2*angleRange) - angleRange
	}
	out, err := Rotate2D(a, float64(angle))
	if err != nil {
		return nil, 0, err
	}
	return out, angle, nil
}

func newRand(src rand.Source) *rand.Rand {
	if src == nil {
		src = rand.NewSource(uint64(rand.Int63()))
	}
	return rand.New(src)
}

// bilinear samples a at the continuous position (y, x). Neighbours outside the
// array contribute 0.
func bilinear(a *ndarray.Array, y, x float64) float64 {
	shape := a.Shape()
	y0 := int(math.Floor(y))
	x0 := int(math.Floor(x))
	fy := y - float64(y0)
	fx := x - float64(x0)

	at := func(r, c int) float64 {
		if r < 0 || r >= shape[0] || c < 0 || c >= shape[1] {
			return 0
		}
		return a.At(r, c)
	}

	top := at(y0, x0)*(1-fx) + at(y0, x0+1)*fx
	bottom := at(y0+1, x0)*(1-fx) + at(y0+1, x0+1)*fx
	return top*(1-fy) + bottom*fy
}
