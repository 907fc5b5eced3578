package bbox

import (
	"math"

	"manet/pkg/errs"
)

// Builder derives new boxes from existing boxes and points. Wherever a continuous
// corner has to become an integer coordinate it goes through the Rounder.
type Builder struct {
	rounder *Rounder
}

// NewBuilder returns a Builder using r for corner rounding. A nil r uses the
// global random source.
func NewBuilder(r *Rounder) *Builder {
	if r == nil {
		r = NewRounder(nil)
	}
	return &Builder{rounder: r}
}

// ResizeAroundCenter returns a box of newSize around the center of box.
//
// The center is taken as Coords - Size/2, which is not the geometric center
// (see BBox.Center).
func (b *Builder) ResizeAroundCenter(box BBox, newSize []int) (BBox, error) {
	if err := box.Validate(); err != nil {
		return BBox{}, err
	}
	if len(newSize) != box.NDim() {
		return BBox{}, errs.Invalid("new size %v does not match %dD box", newSize, box.NDim())
	}
	corner := make([]float64, box.NDim())
	for i := range corner {
		center := float64(box.Coords[i]) - float64(box.Size[i])/2
		corner[i] = center - float64(newSize[i])/2
	}
	return CombineInts(b.rounder.RoundAll(corner), newSize)
}

// EnclosingBoxForPoint returns the smallest n-cube around point that also
// contains box. The half-width is a single scalar over all axes, so the result is
// isotropic even when box is not.
func (b *Builder) EnclosingBoxForPoint(point []float64, box BBox) (BBox, error) {
	if err := box.Validate(); err != nil {
		return BBox{}, err
	}
	if len(point) != box.NDim() {
		return BBox{}, errs.Invalid("point %v does not match %dD box", point, box.NDim())
	}

	maxDist := math.Inf(-1)
	for i, p := range point {
		lo := float64(box.Coords[i])
		hi := float64(box.Coords[i] + box.Size[i])
		maxDist = math.Max(maxDist, math.Max(p-lo, hi-p))
	}

	side := int(2*maxDist + 1)
	corner := make([]float64, len(point))
	size := make([]int, len(point))
	for i, p := range point {
		corner[i] = p - maxDist
		size[i] = side
	}
	return CombineInts(b.rounder.RoundAll(corner), size)
}

// BoxAroundPoint returns the box of the given size centered at point.
func (b *Builder) BoxAroundPoint(point []float64, size []int) (BBox, error) {
	if len(point) != len(size) {
		return BBox{}, errs.Invalid("point %v does not match size %v", point, size)
	}
	corner := make([]float64, len(point))
	for i, p := range point {
		corner[i] = p - float64(size[i])/2
	}
	return CombineInts(b.rounder.RoundAll(corner), size)
}

// BoxAroundIndex is BoxAroundPoint for an integer index.
func (b *Builder) BoxAroundIndex(idx []int, size []int) (BBox, error) {
	point := make([]float64, len(idx))
	for i, v := range idx {
		point[i] = float64(v)
	}
	return b.BoxAroundPoint(point, size)
}
