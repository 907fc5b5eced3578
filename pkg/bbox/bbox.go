// Package bbox implements the bounding-box algebra used for patch sampling.
//
// A box is a minimal corner (Coords) plus a per-axis extent (Size). Its flat form is
// a 2n-length tuple with the n coordinates first and the n sizes last, so
// (4, 4, 2, 1) is a box starting at row 4, col 4 with height 2 and width 1.
// Coordinates may be negative: a box is allowed to extend outside the array it
// will be cut from.
package bbox

import (
	"fmt"
	"math"
	"strings"

	"manet/pkg/errs"
)

// BBox is an axis-aligned n-dimensional bounding box.
type BBox struct {
	Coords []int `json:"coords" yaml:"coords"`
	Size   []int `json:"size" yaml:"size"`
}

// Split decodes a flat box into coordinates and size.
func Split(flat []int) (BBox, error) {
	if len(flat)%2 != 0 {
		return BBox{}, errs.Invalid("bounding box %v has odd length %d", flat, len(flat))
	}
	n := len(flat) / 2
	return BBox{
		Coords: append([]int(nil), flat[:n]...),
		Size:   append([]int(nil), flat[n:]...),
	}, nil
}

// SplitFloat decodes a flat box given as floats, truncating toward zero.
func SplitFloat(flat []float64) (BBox, error) {
	if len(flat)%2 != 0 {
		return BBox{}, errs.Invalid("bounding box %v has odd length %d", flat, len(flat))
	}
	n := len(flat) / 2
	return Combine(flat[:n], flat[n:])
}

// Combine builds a box from coordinates and size, truncating both toward zero.
// Mismatched lengths and negative sizes are rejected.
func Combine(coords, size []float64) (BBox, error) {
	return CombineInts(truncate(coords), truncate(size))
}

// CombineInts builds a box from integer coordinates and size.
func CombineInts(coords, size []int) (BBox, error) {
	b := BBox{
		Coords: append([]int(nil), coords...),
		Size:   append([]int(nil), size...),
	}
	if err := b.Validate(); err != nil {
		return BBox{}, err
	}
	return b, nil
}

// Validate checks the box invariants: equal lengths and non-negative sizes.
func (b BBox) Validate() error {
	if len(b.Coords) != len(b.Size) {
		return errs.Invalid("bounding box has %d coordinates but %d sizes", len(b.Coords), len(b.Size))
	}
	for i, s := range b.Size {
		if s < 0 {
			return errs.Invalid("bounding box size %v is negative on axis %d", b.Size, i)
		}
	}
	return nil
}

// Flat encodes the box as coords followed by size.
func (b BBox) Flat() []int {
	out := make([]int, 0, len(b.Coords)+len(b.Size))
	out = append(out, b.Coords...)
	return append(out, b.Size...)
}

// NDim returns the number of axes.
func (b BBox) NDim() int { return len(b.Coords) }

// End returns the exclusive upper corner Coords + Size.
func (b BBox) End() []int {
	end := make([]int, len(b.Coords))
	for i := range b.Coords {
		end[i] = b.Coords[i] + b.Size[i]
	}
	return end
}

// Center returns Coords + Size/2, the geometric center of the box.
func (b BBox) Center() []float64 {
	c := make([]float64, len(b.Coords))
	for i := range b.Coords {
		c[i] = float64(b.Coords[i]) + float64(b.Size[i])/2
	}
	return c
}

// Contains reports whether idx lies inside the half-open box.
func (b BBox) Contains(idx []int) bool {
	if len(idx) != len(b.Coords) {
		return false
	}
	for i, v := range idx {
		if v < b.Coords[i] || v >= b.Coords[i]+b.Size[i] {
			return false
		}
	}
	return true
}

// Equal reports whether two boxes have identical coordinates and sizes.
func (b BBox) Equal(o BBox) bool {
	return intsEqual(b.Coords, o.Coords) && intsEqual(b.Size, o.Size)
}

// String formats the box in its flat form, e.g. "(5, 5, 1, 1)".
func (b BBox) String() string {
	parts := make([]string, 0, 2*len(b.Coords))
	for _, v := range b.Flat() {
		parts = append(parts, fmt.Sprint(v))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func truncate(xs []float64) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = int(math.Trunc(x))
	}
	return out
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
