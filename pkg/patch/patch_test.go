package patch

import (
	"errors"
	"testing"

	"golang.org/x/exp/rand"

	"manet/pkg/bbox"
	"manet/pkg/errs"
	"manet/pkg/ndarray"
)

// createTestImage returns a rows x cols image where pixel (r, c) = 1 + r*cols + c,
// so no pixel equals the zero pad value
func createTestImage(rows, cols int) *ndarray.Array {
	img := ndarray.New(rows, cols)
	for i := range img.Data() {
		img.Data()[i] = float64(i + 1)
	}
	return img
}

func mustBox(t *testing.T, flat ...int) bbox.BBox {
	t.Helper()
	b, err := bbox.Split(flat)
	if err != nil {
		t.Fatalf("bad test box %v: %v", flat, err)
	}
	return b
}

func TestExtractInside(t *testing.T) {
	img := createTestImage(10, 10)

	p, err := Extract(img, mustBox(t, 2, 3, 4, 2), 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if s := p.Shape(); s[0] != 4 || s[1] != 2 {
		t.Fatalf("shape: got %v, want [4 2]", s)
	}
	for r := 0; r < 4; r++ {
		for c := 0; c < 2; c++ {
			if p.At(r, c) != img.At(r+2, c+3) {
				t.Errorf("patch(%d,%d): got %f, want %f", r, c, p.At(r, c), img.At(r+2, c+3))
			}
		}
	}
}

func TestExtractTopLeftPadding(t *testing.T) {
	img := createTestImage(10, 10)

	p, err := Extract(img, mustBox(t, -2, -2, 4, 4), 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if s := p.Shape(); s[0] != 4 || s[1] != 4 {
		t.Fatalf("shape: got %v, want [4 4]", s)
	}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			want := 0.0
			if r >= 2 && c >= 2 {
				want = img.At(r-2, c-2)
			}
			if p.At(r, c) != want {
				t.Errorf("patch(%d,%d): got %f, want %f", r, c, p.At(r, c), want)
			}
		}
	}
}

func TestExtractBottomRightPadding(t *testing.T) {
	img := createTestImage(5, 5)

	p, err := Extract(img, mustBox(t, 3, 4, 4, 3), -1)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for r := 0; r < 4; r++ {
		for c := 0; c < 3; c++ {
			want := -1.0
			if r < 2 && c < 1 {
				want = img.At(r+3, c+4)
			}
			if p.At(r, c) != want {
				t.Errorf("patch(%d,%d): got %f, want %f", r, c, p.At(r, c), want)
			}
		}
	}
}

func TestExtractShapeAlwaysMatchesBox(t *testing.T) {
	img := createTestImage(6, 7)

	boxes := [][]int{
		{0, 0, 6, 7},
		{-3, -3, 2, 2},     // fully outside, top-left
		{10, 10, 3, 4},     // fully outside, bottom-right
		{-5, 2, 20, 3},     // sticks out on both sides of axis 0
		{1, -100, 2, 1000}, // huge
		{5, 6, 1, 1},
	}

	for _, flat := range boxes {
		box := mustBox(t, flat...)
		p, err := Extract(img, box, 9)
		if err != nil {
			t.Fatalf("Extract(%v) failed: %v", box, err)
		}
		s := p.Shape()
		if s[0] != box.Size[0] || s[1] != box.Size[1] {
			t.Errorf("Extract(%v): shape %v, want %v", box, s, box.Size)
		}
	}
}

func TestExtractFullyOutside(t *testing.T) {
	img := createTestImage(4, 4)

	p, err := Extract(img, mustBox(t, 10, 10, 2, 2), 3)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for _, v := range p.Data() {
		if v != 3 {
			t.Fatalf("fully outside patch should be all pad, got %v", p.Data())
		}
	}
}

func TestExtract3D(t *testing.T) {
	vol := ndarray.New(3, 4, 5)
	for i := range vol.Data() {
		vol.Data()[i] = float64(i + 1)
	}

	p, err := Extract(vol, mustBox(t, -1, 1, 3, 3, 2, 4), 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for z := 0; z < 3; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 4; x++ {
				want := 0.0
				if z >= 1 && x < 2 {
					want = vol.At(z-1, y+1, x+3)
				}
				if p.At(z, y, x) != want {
					t.Errorf("patch(%d,%d,%d): got %f, want %f", z, y, x, p.At(z, y, x), want)
				}
			}
		}
	}
}

func TestExtractErrors(t *testing.T) {
	img := createTestImage(5, 5)

	tests := []struct {
		name string
		box  bbox.BBox
	}{
		{"zero size", bbox.BBox{Coords: []int{0, 0}, Size: []int{0, 2}}},
		{"negative size", bbox.BBox{Coords: []int{0, 0}, Size: []int{2, -2}}},
		{"wrong dimensionality", bbox.BBox{Coords: []int{0}, Size: []int{2}}},
		{"mismatched lengths", bbox.BBox{Coords: []int{0, 0}, Size: []int{2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Extract(img, tt.box, 0); !errors.Is(err, errs.ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestExtractDoesNotAlias(t *testing.T) {
	img := createTestImage(4, 4)
	p, err := Extract(img, mustBox(t, 0, 0, 2, 2), 0)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	p.Set(-5, 0, 0)
	if img.At(0, 0) == -5 {
		t.Errorf("patch shares storage with the image")
	}
}

func TestSampleAroundMask(t *testing.T) {
	img := createTestImage(20, 20)
	m := ndarray.New(20, 20)
	m.Set(1, 10, 10)

	s := NewSampler(rand.NewSource(5))
	for i := 0; i < 20; i++ {
		sample, err := s.SampleAroundMask(img, m, []int{5, 5}, 0)
		if err != nil {
			t.Fatalf("SampleAroundMask failed: %v", err)
		}
		// Corner 10 - 5/2 = 7.5 rounds to 7 or 8 per axis
		for _, c := range sample.Box.Coords {
			if c != 7 && c != 8 {
				t.Fatalf("unexpected box %v", sample.Box)
			}
		}
		if !sample.Box.Contains([]int{10, 10}) {
			t.Errorf("box %v does not contain the sampled voxel", sample.Box)
		}
		if sample.Mask.CountNonzero() != 1 {
			t.Errorf("mask patch should contain the single foreground voxel")
		}
	}
}

func TestSampleAroundMaskErrors(t *testing.T) {
	s := NewSampler(rand.NewSource(1))
	img := createTestImage(5, 5)

	if _, err := s.SampleAroundMask(img, ndarray.New(5, 5), []int{3, 3}, 0); !errors.Is(err, errs.ErrEmptyMask) {
		t.Errorf("empty mask: expected ErrEmptyMask, got %v", err)
	}
	if _, err := s.SampleAroundMask(img, ndarray.New(4, 5), []int{3, 3}, 0); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("shape mismatch: expected ErrInvalidArgument, got %v", err)
	}
}

func TestSampleAroundBox(t *testing.T) {
	img := createTestImage(10, 10)
	s := NewSampler(rand.NewSource(2))

	sample, err := s.SampleAroundBox(img, nil, mustBox(t, 6, 6, 4, 4), []int{2, 2}, 0)
	if err != nil {
		t.Fatalf("SampleAroundBox failed: %v", err)
	}
	// center = coords - size/2 = 4, corner = 3
	if !sample.Box.Equal(bbox.BBox{Coords: []int{3, 3}, Size: []int{2, 2}}) {
		t.Errorf("box: got %v, want (3, 3, 2, 2)", sample.Box)
	}
	if sample.Mask != nil {
		t.Errorf("no mask was given, expected nil mask patch")
	}
	if sample.Image.At(0, 0) != img.At(3, 3) {
		t.Errorf("patch origin: got %f, want %f", sample.Image.At(0, 0), img.At(3, 3))
	}
}
