// Package patch cuts fixed-shape patches out of images.
//
// Boxes may extend past the image on any side; the part of the patch that falls
// outside is filled with a pad value so the patch shape always equals the box size.
package patch

import (
	"manet/pkg/bbox"
	"manet/pkg/errs"
	"manet/pkg/ndarray"
)

// Extract returns the sub-array of image covered by box, shaped exactly box.Size.
//
// Regions of the box outside the image are set to padValue. A box lying entirely
// outside the image yields a patch filled with padValue.
//
// # Errors
//
//   - ErrInvalidArgument if box does not match the image's dimensionality
//   - ErrInvalidArgument if any box size is zero or negative
func Extract(image *ndarray.Array, box bbox.BBox, padValue float64) (*ndarray.Array, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	if box.NDim() != image.NDim() {
		return nil, errs.Invalid("%dD box %v for %dD image", box.NDim(), box, image.NDim())
	}
	for i, s := range box.Size {
		if s <= 0 {
			return nil, errs.Invalid("box %v has non-positive size on axis %d", box, i)
		}
	}

	shape := image.Shape()
	n := box.NDim()

	// Left and right deficits: how far the box sticks out of the image per axis.
	left := make([]int, n)
	right := make([]int, n)
	lo := make([]int, n)
	hi := make([]int, n)
	padded := false
	outside := false
	for i := 0; i < n; i++ {
		left[i] = max(0, -box.Coords[i])
		right[i] = max(0, box.Coords[i]+box.Size[i]-shape[i])
		lo[i] = box.Coords[i] + left[i]
		hi[i] = box.Coords[i] + box.Size[i] - right[i]
		if left[i] > 0 || right[i] > 0 {
			padded = true
		}
		if lo[i] >= hi[i] {
			outside = true
		}
	}

	if outside {
		return ndarray.Full(padValue, box.Size...), nil
	}

	region, err := image.Region(lo, hi)
	if err != nil {
		return nil, err
	}
	if !padded {
		return region, nil
	}

	out := ndarray.Full(padValue, box.Size...)
	if err := out.Paste(region, left); err != nil {
		return nil, err
	}
	return out, nil
}
