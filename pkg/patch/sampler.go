package patch

import (
	"fmt"

	"golang.org/x/exp/rand"

	"manet/pkg/bbox"
	"manet/pkg/errs"
	"manet/pkg/mask"
	"manet/pkg/ndarray"
)

// Sample is a training patch together with the box it was cut from.
type Sample struct {
	Box   bbox.BBox
	Image *ndarray.Array
	Mask  *ndarray.Array
}

// Sampler draws training patches. Both the choice of center voxel and the
// rounding of box corners come from the same random source, so a seeded source
// reproduces a sampling run exactly. A Sampler is not safe for concurrent use.
type Sampler struct {
	voxels  *mask.Sampler
	builder *bbox.Builder
}

// NewSampler returns a Sampler drawing from src.
func NewSampler(src rand.Source) *Sampler {
	if src == nil {
		src = rand.NewSource(1)
	}
	return &Sampler{
		voxels:  mask.NewSampler(src),
		builder: bbox.NewBuilder(bbox.NewRounder(src)),
	}
}

// SampleAroundMask centers a patch of the given size on a random foreground
// voxel of m and extracts both the image and the mask patch. The image is padded
// with padValue, the mask with 0.
func (s *Sampler) SampleAroundMask(image, m *ndarray.Array, size []int, padValue float64) (Sample, error) {
	if !image.SameShape(m) {
		return Sample{}, errs.Invalid("image %v and mask %v differ in shape", image, m)
	}
	idx, err := s.voxels.RandomNonzeroIndex(m)
	if err != nil {
		return Sample{}, err
	}
	box, err := s.builder.BoxAroundIndex(idx, size)
	if err != nil {
		return Sample{}, err
	}
	return extractPair(image, m, box, padValue)
}

// SampleAroundBox resizes box to size around its center and extracts the
// image patch, plus the mask patch when m is non-nil.
func (s *Sampler) SampleAroundBox(image, m *ndarray.Array, box bbox.BBox, size []int, padValue float64) (Sample, error) {
	resized, err := s.builder.ResizeAroundCenter(box, size)
	if err != nil {
		return Sample{}, err
	}
	if m == nil {
		img, err := Extract(image, resized, padValue)
		if err != nil {
			return Sample{}, err
		}
		return Sample{Box: resized, Image: img}, nil
	}
	return extractPair(image, m, resized, padValue)
}

func extractPair(image, m *ndarray.Array, box bbox.BBox, padValue float64) (Sample, error) {
	if !image.SameShape(m) {
		return Sample{}, errs.Invalid("image %v and mask %v differ in shape", image, m)
	}
	img, err := Extract(image, box, padValue)
	if err != nil {
		return Sample{}, fmt.Errorf("extracting image patch: %w", err)
	}
	mp, err := Extract(m, box, 0)
	if err != nil {
		return Sample{}, fmt.Errorf("extracting mask patch: %w", err)
	}
	return Sample{Box: box, Image: img, Mask: mp}, nil
}
