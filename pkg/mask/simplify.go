package mask

import (
	"math"

	"github.com/golang/geo/r2"
)

// Simplify reduces the number of vertices using the Douglas-Peucker algorithm.
// Vertices closer than tolerance to the simplified polyline are dropped; the
// first and last vertices are always kept, so a closed contour stays closed.
// A tolerance <= 0 returns the contour unchanged.
func Simplify(c Contour, tolerance float64) Contour {
	if tolerance <= 0 || len(c) <= 2 {
		return c
	}

	// Find point with maximum distance from line between first and last points
	dmax := 0.0
	index := 0
	end := len(c) - 1
	for i := 1; i < end; i++ {
		d := perpendicularDistance(c[i], c[0], c[end])
		if d > dmax {
			dmax = d
			index = i
		}
	}

	if dmax > tolerance {
		left := Simplify(c[:index+1], tolerance)
		right := Simplify(c[index:], tolerance)

		// Avoid duplicating the split point
		out := make(Contour, 0, len(left)+len(right)-1)
		out = append(out, left[:len(left)-1]...)
		return append(out, right...)
	}

	return Contour{c[0], c[end]}
}

// perpendicularDistance returns the distance from p to the line through a and b,
// or to a itself when a and b coincide.
func perpendicularDistance(p, a, b r2.Point) float64 {
	ab := b.Sub(a)
	if ab.Norm() == 0 {
		return p.Sub(a).Norm()
	}
	return math.Abs(ab.Cross(p.Sub(a))) / ab.Norm()
}
