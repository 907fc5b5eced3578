package mask

import (
	"fmt"

	"github.com/golang/geo/r2"

	"manet/pkg/errs"
	"manet/pkg/ndarray"
)

// Contour is an ordered 2D polyline in array coordinates: X is the row and Y the
// column. A closed contour repeats its first point at the end.
type Contour []r2.Point

// Closed reports whether the first and last points coincide.
func (c Contour) Closed() bool {
	return len(c) > 1 && c[0] == c[len(c)-1]
}

// TraceContour returns the single iso-0.5 boundary of a 2D binary mask.
//
// The boundary is found with marching squares, treating diagonal foreground
// neighbours as disconnected. A boundary that is already closed is returned as is.
// A mask touching the image border yields an open boundary; it is closed against
// the nearest vertical image edge and then simplified with Douglas-Peucker at the
// given tolerance (tolerance <= 0 keeps every vertex).
//
// Boundaries are oriented so that walking toward increasing rows keeps the
// foreground at lower columns. The open boundary is closed against column 0 when
// its first row step is positive (mask on the left) and against the last column
// otherwise.
//
// # Errors
//
//   - ErrUnsupportedConfiguration if m is not 2D
//   - ErrInvalidArgument if m is not binary
//   - ErrEmptyMask if m has no foreground
//   - ErrInvalidArgument if the mask does not have exactly one boundary
func TraceContour(m *ndarray.Array, tolerance float64) (Contour, error) {
	if err := AssertNDim(m, "mask", 2); err != nil {
		return nil, err
	}
	if err := AssertBinary(m, "mask"); err != nil {
		return nil, err
	}

	contours := findContours(m)
	if len(contours) != 1 {
		return nil, errs.Invalid("mask must have exactly one contour, found %d", len(contours))
	}
	c := contours[0]
	if c.Closed() {
		return c, nil
	}

	cols := m.Shape()[1]
	edge := float64(cols - 1)
	if onLeft(c) {
		edge = 0
	}
	first, last := c[0], c[len(c)-1]
	closed := make(Contour, 0, len(c)+3)
	closed = append(closed, c...)
	// Ends already lying on the edge need no extra vertex.
	if last.Y != edge {
		closed = append(closed, r2.Point{X: last.X, Y: edge})
	}
	if first.Y != edge {
		closed = append(closed, r2.Point{X: first.X, Y: edge})
	}
	closed = append(closed, first)
	return Simplify(closed, tolerance), nil
}

// FindContours returns every iso-0.5 boundary of a 2D mask without any
// closing or simplification. Open boundaries start and end on the array border.
func FindContours(m *ndarray.Array) ([]Contour, error) {
	if err := AssertNDim(m, "mask", 2); err != nil {
		return nil, err
	}
	return findContours(m), nil
}

// onLeft reports whether the foreground lies toward column 0, judged from the
// first non-zero row step of the boundary.
func onLeft(c Contour) bool {
	for i := 1; i < len(c); i++ {
		if d := c[i].X - c[i-1].X; d != 0 {
			return d > 0
		}
	}
	return true
}

// gridKey identifies a crossing point by its doubled coordinates, which are
// always integers for midpoints of cell edges.
type gridKey struct{ r, c int }

func keyOf(p r2.Point) gridKey {
	return gridKey{int(2 * p.X), int(2 * p.Y)}
}

type segment struct {
	from, to r2.Point
}

func findContours(m *ndarray.Array) []Contour {
	segs := marchingSquares(m)

	byStart := make(map[gridKey]int, len(segs))
	hasPred := make(map[gridKey]bool, len(segs))
	for i, s := range segs {
		byStart[keyOf(s.from)] = i
		hasPred[keyOf(s.to)] = true
	}

	used := make([]bool, len(segs))
	walk := func(start int) Contour {
		c := Contour{segs[start].from}
		i := start
		for {
			used[i] = true
			c = append(c, segs[i].to)
			next, ok := byStart[keyOf(segs[i].to)]
			if !ok || used[next] {
				return c
			}
			i = next
		}
	}

	var contours []Contour
	// Open boundaries first: they start where no segment ends.
	for i, s := range segs {
		if !used[i] && !hasPred[keyOf(s.from)] {
			contours = append(contours, walk(i))
		}
	}
	// Whatever remains forms closed loops; walk ends back on the start point.
	for i := range segs {
		if !used[i] {
			contours = append(contours, walk(i))
		}
	}
	return contours
}

// marchingSquares emits one oriented segment per boundary crossing pair in every
// 2x2 cell of the mask.
func marchingSquares(m *ndarray.Array) []segment {
	shape := m.Shape()
	rows, cols := shape[0], shape[1]
	data := m.Data()
	high := func(r, c int) bool { return data[r*cols+c] > 0.5 }

	var segs []segment
	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			tl, tr := high(r, c), high(r, c+1)
			bl, br := high(r+1, c), high(r+1, c+1)

			fr, fc := float64(r), float64(c)
			top := r2.Point{X: fr, Y: fc + 0.5}
			bottom := r2.Point{X: fr + 1, Y: fc + 0.5}
			left := r2.Point{X: fr + 0.5, Y: fc}
			right := r2.Point{X: fr + 0.5, Y: fc + 1}

			var corners []r2.Point
			if tl {
				corners = append(corners, r2.Point{X: fr, Y: fc})
			}
			if tr {
				corners = append(corners, r2.Point{X: fr, Y: fc + 1})
			}
			if bl {
				corners = append(corners, r2.Point{X: fr + 1, Y: fc})
			}
			if br {
				corners = append(corners, r2.Point{X: fr + 1, Y: fc + 1})
			}

			switch {
			case tl && br && !tr && !bl:
				segs = append(segs, orient(top, left, corners), orient(bottom, right, corners))
			case tr && bl && !tl && !br:
				segs = append(segs, orient(top, right, corners), orient(bottom, left, corners))
			default:
				var crossed []r2.Point
				if tl != tr {
					crossed = append(crossed, top)
				}
				if bl != br {
					crossed = append(crossed, bottom)
				}
				if tl != bl {
					crossed = append(crossed, left)
				}
				if tr != br {
					crossed = append(crossed, right)
				}
				if len(crossed) == 2 {
					segs = append(segs, orient(crossed[0], crossed[1], corners))
				}
			}
		}
	}
	return segs
}

// orient directs a segment so that its nearest foreground corner lies on the
// negative side of the cross product, keeping foreground at lower columns when
// the segment runs toward increasing rows.
func orient(a, b r2.Point, corners []r2.Point) segment {
	mid := a.Add(b).Mul(0.5)
	nearest := corners[0]
	for _, p := range corners[1:] {
		if p.Sub(mid).Norm() < nearest.Sub(mid).Norm() {
			nearest = p
		}
	}
	if b.Sub(a).Cross(nearest.Sub(a)) > 0 {
		a, b = b, a
	}
	return segment{from: a, to: b}
}

// String renders the contour as (row, col) pairs.
func (c Contour) String() string {
	s := "["
	for i, p := range c {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("(%g, %g)", p.X, p.Y)
	}
	return s + "]"
}
