// Package imageio converts between image files and arrays.
//
// Pixels are read as gray levels scaled to [0, 1]. 16-bit sources keep their
// full precision; color sources are converted with the standard luma weights.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	"manet/pkg/errs"
	"manet/pkg/ndarray"
)

// Load decodes the image at path (PNG, JPEG, GIF, BMP or TIFF) into a
// rows x cols array in [0, 1].
func Load(path string) (*ndarray.Array, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return FromImage(img), nil
}

// LoadMask decodes a mask image and binarizes it: pixels with a gray level of
// at least half scale become 1, all others 0.
func LoadMask(path string) (*ndarray.Array, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mask: %w", err)
	}
	return Binarize(img), nil
}

// Binarize thresholds img at half scale into a {0, 1} array.
func Binarize(img image.Image) *ndarray.Array {
	gray := segment.Threshold(img, 128)
	b := gray.Bounds()
	out := ndarray.New(max(1, b.Dy()), max(1, b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if gray.GrayAt(x, y).Y > 127 {
				out.Set(1, y-b.Min.Y, x-b.Min.X)
			}
		}
	}
	return out
}

// FromImage converts img into a rows x cols array in [0, 1].
func FromImage(img image.Image) *ndarray.Array {
	b := img.Bounds()
	out := ndarray.New(max(1, b.Dy()), max(1, b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			out.Set(float64(g.Y)/math.MaxUint16, y-b.Min.Y, x-b.Min.X)
		}
	}
	return out
}

// ToGray16 renders a 2D array as a 16-bit gray image, mapping the array minimum
// to black and its maximum to white. A constant array is black.
func ToGray16(a *ndarray.Array) (*image.Gray16, error) {
	if a == nil || a.NDim() != 2 {
		return nil, fmt.Errorf("%w: only 2D arrays can be rendered", errs.ErrUnsupportedConfiguration)
	}
	shape := a.Shape()
	lo, hi := a.Min(), a.Max()
	scale := 0.0
	if hi > lo {
		scale = math.MaxUint16 / (hi - lo)
	}

	img := image.NewGray16(image.Rect(0, 0, shape[1], shape[0]))
	for r := 0; r < shape[0]; r++ {
		for c := 0; c < shape[1]; c++ {
			v := math.Round((a.At(r, c) - lo) * scale)
			img.SetGray16(c, r, color.Gray16{Y: uint16(v)})
		}
	}
	return img, nil
}

// Save writes a 2D array to path through ToGray16. The format follows the file
// extension.
func Save(path string, a *ndarray.Array) error {
	img, err := ToGray16(a)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
