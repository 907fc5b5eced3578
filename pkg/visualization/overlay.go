// Package visualization renders 2D images with annotations drawn on top: mask
// contours, bounding boxes and detected peaks.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"

	"manet/pkg/bbox"
	"manet/pkg/errs"
	"manet/pkg/imageio"
	"manet/pkg/mask"
	"manet/pkg/ndarray"
)

// Style controls how annotations are drawn. Colors are hex strings like "#ff0000".
type Style struct {
	// MaskColor is the color of mask contours and of the mask fill
	MaskColor string

	// MaskAlpha blends the mask color over foreground pixels; 0 draws contours only
	MaskAlpha float64

	// BBoxColor is the outline color of bounding boxes
	BBoxColor string

	// PeakColor is the fill color of peak markers
	PeakColor string

	// PeakRadius is the radius of peak markers in pixels
	PeakRadius int
}

// DefaultStyle returns red contours, blue boxes and green peak markers.
func DefaultStyle() Style {
	return Style{
		MaskColor:  "#ff0000",
		MaskAlpha:  0,
		BBoxColor:  "#0000ff",
		PeakColor:  "#00ff00",
		PeakRadius: 3,
	}
}

// Overlay is an RGB rendering of a 2D image that annotations are drawn onto.
type Overlay struct {
	canvas *image.NRGBA

	maskColor colorful.Color
	bboxColor colorful.Color
	peakColor colorful.Color

	maskAlpha  float64
	peakRadius int
}

// NewOverlay renders img as grayscale, scaled between its minimum and maximum.
func NewOverlay(img *ndarray.Array, style Style) (*Overlay, error) {
	gray, err := imageio.ToGray16(img)
	if err != nil {
		return nil, err
	}
	if style.MaskAlpha < 0 || style.MaskAlpha > 1 {
		return nil, errs.Invalid("mask alpha %g must be in [0, 1]", style.MaskAlpha)
	}
	if style.PeakRadius < 0 {
		return nil, errs.Invalid("peak radius %d must not be negative", style.PeakRadius)
	}

	o := &Overlay{
		canvas:     imaging.Clone(gray),
		maskAlpha:  style.MaskAlpha,
		peakRadius: style.PeakRadius,
	}
	for _, c := range []struct {
		hex string
		dst *colorful.Color
	}{
		{style.MaskColor, &o.maskColor},
		{style.BBoxColor, &o.bboxColor},
		{style.PeakColor, &o.peakColor},
	} {
		parsed, err := colorful.Hex(c.hex)
		if err != nil {
			return nil, fmt.Errorf("%w: color %q: %v", errs.ErrInvalidArgument, c.hex, err)
		}
		*c.dst = parsed
	}
	return o, nil
}

// Image returns the rendered canvas.
func (o *Overlay) Image() *image.NRGBA {
	return o.canvas
}

// DrawMask draws the contour of every component of the binary mask m, and
// blends the mask color over the foreground when the style has a mask alpha.
func (o *Overlay) DrawMask(m *ndarray.Array) error {
	b := o.canvas.Bounds()
	if s := m.Shape(); m.NDim() != 2 || s[0] != b.Dy() || s[1] != b.Dx() {
		return errs.Invalid("mask %v does not match %dx%d image", m, b.Dy(), b.Dx())
	}
	if err := mask.AssertBinary(m, "mask"); err != nil {
		return err
	}
	contours, err := mask.FindContours(m)
	if err != nil {
		return err
	}

	if o.maskAlpha > 0 {
		for _, off := range m.Nonzero() {
			idx := m.Unravel(off)
			o.blend(idx[1], idx[0], o.maskColor, o.maskAlpha)
		}
	}
	for _, c := range contours {
		o.DrawContour(c)
	}
	return nil
}

// DrawContour draws the polyline through the contour's vertices.
func (o *Overlay) DrawContour(c mask.Contour) {
	for i := 1; i < len(c); i++ {
		o.line(c[i-1], c[i], o.maskColor)
	}
}

// DrawBBox outlines a 2D box. Parts outside the image are clipped.
func (o *Overlay) DrawBBox(box bbox.BBox) error {
	if err := box.Validate(); err != nil {
		return err
	}
	if box.NDim() != 2 {
		return fmt.Errorf("%w: cannot draw %dD box", errs.ErrUnsupportedConfiguration, box.NDim())
	}
	r0, c0 := float64(box.Coords[0]), float64(box.Coords[1])
	r1, c1 := r0+float64(max(0, box.Size[0]-1)), c0+float64(max(0, box.Size[1]-1))
	corners := []r2.Point{{X: r0, Y: c0}, {X: r0, Y: c1}, {X: r1, Y: c1}, {X: r1, Y: c0}, {X: r0, Y: c0}}
	for i := 1; i < len(corners); i++ {
		o.line(corners[i-1], corners[i], o.bboxColor)
	}
	return nil
}

// DrawPeaks draws a filled disk at each (row, col) peak.
func (o *Overlay) DrawPeaks(peaks [][]int) error {
	rad := o.peakRadius
	for _, p := range peaks {
		if len(p) != 2 {
			return fmt.Errorf("%w: cannot draw %dD peak %v", errs.ErrUnsupportedConfiguration, len(p), p)
		}
		for dr := -rad; dr <= rad; dr++ {
			for dc := -rad; dc <= rad; dc++ {
				if dr*dr+dc*dc <= rad*rad {
					o.set(p[1]+dc, p[0]+dr, o.peakColor)
				}
			}
		}
	}
	return nil
}

// Save writes the canvas to path; the format follows the extension.
func (o *Overlay) Save(path string) error {
	if err := imaging.Save(o.canvas, path); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}

// line rasterizes the segment a-b, given in (row, col) coordinates.
func (o *Overlay) line(a, b r2.Point, c colorful.Color) {
	d := b.Sub(a)
	steps := int(math.Ceil(math.Max(math.Abs(d.X), math.Abs(d.Y))))
	for i := 0; i <= steps; i++ {
		p := a
		if steps > 0 {
			p = a.Add(d.Mul(float64(i) / float64(steps)))
		}
		o.set(int(math.Round(p.Y)), int(math.Round(p.X)), c)
	}
}

func (o *Overlay) set(x, y int, c colorful.Color) {
	if !image.Pt(x, y).In(o.canvas.Bounds()) {
		return
	}
	r, g, b := c.RGB255()
	o.canvas.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
}

func (o *Overlay) blend(x, y int, c colorful.Color, alpha float64) {
	if !image.Pt(x, y).In(o.canvas.Bounds()) {
		return
	}
	cur, ok := colorful.MakeColor(o.canvas.NRGBAAt(x, y))
	if !ok {
		cur = colorful.Color{}
	}
	o.set(x, y, cur.BlendRgb(c, alpha))
}
