// Package mask computes geometry from binary masks: bounding boxes, random
// foreground voxels and 2D boundary contours.
//
// A mask is an ndarray.Array whose non-zero voxels mark the foreground. Functions
// that need foreground fail with errs.ErrEmptyMask on an all-zero mask instead of
// returning a degenerate result.
package mask

import (
	"fmt"

	"golang.org/x/exp/rand"

	"manet/pkg/bbox"
	"manet/pkg/errs"
	"manet/pkg/ndarray"
)

// BoundingBox returns the minimal box containing every non-zero voxel of m.
func BoundingBox(m *ndarray.Array) (bbox.BBox, error) {
	n := m.NDim()
	lo := m.Shape()
	hi := make([]int, n)
	for i := range hi {
		hi[i] = -1
	}

	found := false
	for off, v := range m.Data() {
		if v == 0 {
			continue
		}
		found = true
		for i, c := range m.Unravel(off) {
			lo[i] = min(lo[i], c)
			hi[i] = max(hi[i], c)
		}
	}
	if !found {
		return bbox.BBox{}, fmt.Errorf("%w: cannot compute bounding box of %v", errs.ErrEmptyMask, m)
	}

	size := make([]int, n)
	for i := range size {
		size[i] = hi[i] - lo[i] + 1
	}
	return bbox.CombineInts(lo, size)
}

// Sampler draws random foreground voxels. It is not safe for concurrent use.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a Sampler drawing from src. A nil src is seeded from 1.
func NewSampler(src rand.Source) *Sampler {
	if src == nil {
		src = rand.NewSource(1)
	}
	return &Sampler{rng: rand.New(src)}
}

// RandomNonzeroIndex returns an index chosen uniformly among the non-zero voxels
// of m. The cost is proportional to the mask volume.
func (s *Sampler) RandomNonzeroIndex(m *ndarray.Array) ([]int, error) {
	nz := m.Nonzero()
	if len(nz) == 0 {
		return nil, fmt.Errorf("%w: cannot sample from %v", errs.ErrEmptyMask, m)
	}
	return m.Unravel(nz[s.rng.Intn(len(nz))]), nil
}
