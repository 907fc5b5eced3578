package imageio

import (
	"errors"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"manet/pkg/errs"
	"manet/pkg/ndarray"
)

func TestFromImage(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 3, 2))
	img.SetGray16(2, 1, color.Gray16{Y: math.MaxUint16})
	img.SetGray16(0, 1, color.Gray16{Y: math.MaxUint16 / 2})

	a := FromImage(img)
	if s := a.Shape(); s[0] != 2 || s[1] != 3 {
		t.Fatalf("Expected shape [2 3], got %v", s)
	}
	if a.At(1, 2) != 1 {
		t.Errorf("Expected white pixel to be 1, got %f", a.At(1, 2))
	}
	if math.Abs(a.At(1, 0)-0.5) > 1e-4 {
		t.Errorf("Expected mid gray near 0.5, got %f", a.At(1, 0))
	}
	if a.At(0, 0) != 0 {
		t.Errorf("Expected black pixel to be 0, got %f", a.At(0, 0))
	}
}

func TestToGray16(t *testing.T) {
	a, _ := ndarray.FromRows([][]float64{{-1, 0}, {1, 3}})

	img, err := ToGray16(a)
	if err != nil {
		t.Fatalf("ToGray16 failed: %v", err)
	}
	if got := img.Gray16At(0, 0).Y; got != 0 {
		t.Errorf("minimum should be black, got %d", got)
	}
	if got := img.Gray16At(1, 1).Y; got != math.MaxUint16 {
		t.Errorf("maximum should be white, got %d", got)
	}
	if got := img.Gray16At(0, 1).Y; got != 32768 {
		t.Errorf("midpoint: expected 32768, got %d", got)
	}

	if _, err := ToGray16(ndarray.New(2, 2, 2)); !errors.Is(err, errs.ErrUnsupportedConfiguration) {
		t.Errorf("3D: expected ErrUnsupportedConfiguration, got %v", err)
	}

	flat, err := ToGray16(ndarray.Full(5, 2, 2))
	if err != nil {
		t.Fatalf("ToGray16 failed: %v", err)
	}
	if flat.Gray16At(1, 1).Y != 0 {
		t.Errorf("constant array should render black")
	}
}

func TestSaveLoadPNG(t *testing.T) {
	a, _ := ndarray.FromRows([][]float64{{0, 0.25}, {0.5, 1}})
	path := filepath.Join(t.TempDir(), "out.png")

	if err := Save(path, a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for i, v := range a.Data() {
		if math.Abs(got.Data()[i]-v) > 1e-4 {
			t.Errorf("element %d: expected %f, got %f", i, v, got.Data()[i])
		}
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Errorf("Expected error for missing file")
	}
}

func TestBinarize(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.SetGray(0, 0, color.Gray{Y: 10})
	img.SetGray(1, 0, color.Gray{Y: 200})
	img.SetGray(2, 0, color.Gray{Y: 255})

	m := Binarize(img)
	want := []float64{0, 1, 1}
	for i, v := range m.Data() {
		if v != want[i] {
			t.Errorf("pixel %d: expected %f, got %f", i, want[i], v)
		}
	}
	if !m.IsBinary() {
		t.Errorf("Binarize output should be binary")
	}
}

func TestLoadMask(t *testing.T) {
	a, _ := ndarray.FromRows([][]float64{{0, 1}, {1, 0}})
	path := filepath.Join(t.TempDir(), "mask.png")
	if err := Save(path, a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	m, err := LoadMask(path)
	if err != nil {
		t.Fatalf("LoadMask failed: %v", err)
	}
	for i, v := range a.Data() {
		if m.Data()[i] != v {
			t.Errorf("element %d: expected %f, got %f", i, v, m.Data()[i])
		}
	}
}
