package peak

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"manet/pkg/errs"
	"manet/pkg/ndarray"
)

func responseWith(rows, cols int, values map[[2]int]float64) *ndarray.Array {
	a := ndarray.New(rows, cols)
	for idx, v := range values {
		a.Set(v, idx[0], idx[1])
	}
	return a
}

func samePeaks(a, b [][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func distance(a, b []int) float64 {
	sum := 0.0
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func TestFindPeaksTwoSeparatedPeaks(t *testing.T) {
	resp := responseWith(10, 10, map[[2]int]float64{
		{2, 2}: 0.9,
		{7, 7}: 0.7,
	})

	got := FindPeaks(resp, 3, 0.5)
	want := [][]int{{2, 2}, {7, 7}}
	if !samePeaks(got, want) {
		t.Errorf("threshold 0.5: got %v, want %v", got, want)
	}

	got = FindPeaks(resp, 3, 0.8)
	want = [][]int{{2, 2}}
	if !samePeaks(got, want) {
		t.Errorf("threshold 0.8: got %v, want %v", got, want)
	}
}

func TestFindPeaksSuppressesNeighbour(t *testing.T) {
	resp := responseWith(10, 10, map[[2]int]float64{
		{4, 4}: 0.9,
		{4, 5}: 0.8,
	})

	got := FindPeaks(resp, 5, 0.5)
	want := [][]int{{4, 4}}
	if !samePeaks(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFindPeaksAtExactDistanceKept(t *testing.T) {
	resp := responseWith(10, 10, map[[2]int]float64{
		{0, 0}: 0.9,
		{0, 3}: 0.8,
	})

	got := FindPeaks(resp, 3, 0.5)
	if len(got) != 2 {
		t.Errorf("peaks exactly minDistance apart should both be kept, got %v", got)
	}
}

func TestFindPeaksTieBreak(t *testing.T) {
	// Equal values: the lower row-major index wins and suppresses the other.
	resp := responseWith(5, 5, map[[2]int]float64{
		{1, 3}: 0.6,
		{1, 2}: 0.6,
		{2, 2}: 0.6,
	})

	got := FindPeaks(resp, 2, 0.5)
	want := [][]int{{1, 2}}
	if !samePeaks(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFindPeaksThresholdInclusive(t *testing.T) {
	resp := responseWith(3, 3, map[[2]int]float64{{1, 1}: 0.5})

	if got := FindPeaks(resp, 1, 0.5); len(got) != 1 {
		t.Errorf("value equal to threshold should be kept, got %v", got)
	}
}

func TestFindPeaksEmpty(t *testing.T) {
	if got := FindPeaks(ndarray.New(4, 4), 2, 0.1); len(got) != 0 {
		t.Errorf("all-zero map above threshold 0.1: got %v", got)
	}
	if got := FindPeaks(nil, 2, 0.1); got != nil {
		t.Errorf("nil map: got %v", got)
	}
}

func TestFindPeaksProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	resp := ndarray.New(32, 32)
	for i := range resp.Data() {
		resp.Data()[i] = rng.Float64()
	}

	tests := []struct {
		minDistance float64
		threshold   float64
	}{
		{1, 0.5},
		{3, 0.2},
		{4.5, 0.9},
		{8, 0},
	}

	for _, tt := range tests {
		peaks := FindPeaks(resp, tt.minDistance, tt.threshold)
		if len(peaks) == 0 {
			t.Fatalf("d=%g thr=%g: expected some peaks", tt.minDistance, tt.threshold)
		}
		prev := math.Inf(1)
		for i, p := range peaks {
			v := resp.At(p...)
			if v < tt.threshold {
				t.Errorf("d=%g thr=%g: peak %v has value %f below threshold", tt.minDistance, tt.threshold, p, v)
			}
			if v > prev {
				t.Errorf("d=%g thr=%g: values not in descending order at %d", tt.minDistance, tt.threshold, i)
			}
			prev = v
			for _, q := range peaks[:i] {
				if distance(p, q) < tt.minDistance {
					t.Errorf("d=%g thr=%g: peaks %v and %v are too close", tt.minDistance, tt.threshold, p, q)
				}
			}
		}
	}
}

func TestFindPeaksMonotoneInThreshold(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	resp := ndarray.New(20, 20)
	for i := range resp.Data() {
		resp.Data()[i] = rng.Float64()
	}

	prev := math.MaxInt
	for thr := 0.0; thr <= 1.0; thr += 0.05 {
		n := len(FindPeaks(resp, 2, thr))
		if n > prev {
			t.Errorf("raising threshold to %.2f increased peak count from %d to %d", thr, prev, n)
		}
		prev = n
	}
}

func TestFindPeaks3D(t *testing.T) {
	resp := ndarray.New(4, 4, 4)
	resp.Set(1, 0, 0, 0)
	resp.Set(0.9, 1, 1, 1)
	resp.Set(0.8, 3, 3, 3)

	got := FindPeaks(resp, 2, 0.5)
	want := [][]int{{0, 0, 0}, {3, 3, 3}}
	if !samePeaks(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDetector(t *testing.T) {
	resp := responseWith(10, 10, map[[2]int]float64{
		{1, 1}: 0.9,
		{5, 5}: 0.8,
		{8, 8}: 0.7,
	})

	d, err := NewDetector(Options{MinDistance: 2, Threshold: 0.5, MaxPeaks: 2})
	if err != nil {
		t.Fatalf("NewDetector failed: %v", err)
	}
	got := d.Detect(resp)
	want := [][]int{{1, 1}, {5, 5}}
	if !samePeaks(got, want) {
		t.Errorf("Detect: got %v, want %v", got, want)
	}

	levels := d.Sweep(resp, []float64{0.6, 0.85, 0.95})
	counts := []int{2, 1, 0}
	for i, lvl := range levels {
		if len(lvl.Peaks) != counts[i] {
			t.Errorf("Sweep threshold %g: got %d peaks, want %d", lvl.Threshold, len(lvl.Peaks), counts[i])
		}
	}
}

func TestNewDetectorErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative distance", Options{MinDistance: -1}},
		{"negative max peaks", Options{MaxPeaks: -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDetector(tt.opts); !errors.Is(err, errs.ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}
