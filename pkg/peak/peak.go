// Package peak finds local maxima in response maps by greedy non-maximum
// suppression.
package peak

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"manet/pkg/errs"
	"manet/pkg/ndarray"
)

// location is an accepted peak position that satisfies kdtree.Comparable.
type location []float64

// Compare implements the kdtree.Comparable interface
func (p location) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(location)
	return p[d] - q[d]
}

// Dims implements the kdtree.Comparable interface
func (p location) Dims() int { return len(p) }

// Distance returns the squared Euclidean distance.
func (p location) Distance(c kdtree.Comparable) float64 {
	q := c.(location)
	sum := 0.0
	for i := range p {
		d := p[i] - q[i]
		sum += d * d
	}
	return sum
}

type candidate struct {
	offset int
	value  float64
}

// FindPeaks returns the positions of response that hold a value >= threshold
// and have no stronger accepted peak closer than minDistance.
//
// Candidates are visited by value, highest first; equal values are visited in
// ascending row-major order. A candidate is accepted iff every previously
// accepted peak lies at Euclidean distance >= minDistance. The result is in
// acceptance order, so values are non-increasing along it.
func FindPeaks(response *ndarray.Array, minDistance, threshold float64) [][]int {
	return findPeaks(response, minDistance, threshold, 0)
}

func findPeaks(response *ndarray.Array, minDistance, threshold float64, maxPeaks int) [][]int {
	if response == nil || response.Size() == 0 {
		return nil
	}

	var cands []candidate
	for off, v := range response.Data() {
		if v >= threshold {
			cands = append(cands, candidate{offset: off, value: v})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].value > cands[j].value
	})

	limit := minDistance * minDistance
	tree := &kdtree.Tree{}
	var peaks [][]int
	for _, c := range cands {
		idx := response.Unravel(c.offset)
		p := make(location, len(idx))
		for i, v := range idx {
			p[i] = float64(v)
		}

		if tree.Count > 0 && minDistance > 0 {
			if _, d := tree.Nearest(p); d < limit {
				continue
			}
		}

		tree.Insert(p, false)
		peaks = append(peaks, idx)
		if maxPeaks > 0 && len(peaks) == maxPeaks {
			break
		}
	}
	return peaks
}

// Options configure a Detector.
type Options struct {
	// MinDistance is the suppression radius in pixels.
	MinDistance float64 `yaml:"minDistance"`
	// Threshold is the minimum response of a peak.
	Threshold float64 `yaml:"threshold"`
	// MaxPeaks caps the number of peaks per map; 0 means unlimited.
	MaxPeaks int `yaml:"maxPeaks"`
}

// Detector applies FindPeaks with fixed options.
type Detector struct {
	opts Options
}

// NewDetector validates opts and returns a Detector.
func NewDetector(opts Options) (*Detector, error) {
	if opts.MinDistance < 0 {
		return nil, errs.Invalid("min distance %g must not be negative", opts.MinDistance)
	}
	if opts.MaxPeaks < 0 {
		return nil, errs.Invalid("max peaks %d must not be negative", opts.MaxPeaks)
	}
	return &Detector{opts: opts}, nil
}

// Options returns the detector's configuration.
func (d *Detector) Options() Options { return d.opts }

// Detect returns the peaks of response.
func (d *Detector) Detect(response *ndarray.Array) [][]int {
	return findPeaks(response, d.opts.MinDistance, d.opts.Threshold, d.opts.MaxPeaks)
}

// Level is the peak list found at one threshold.
type Level struct {
	Threshold float64
	Peaks     [][]int
}

// Sweep runs the detector once per threshold, ignoring Options.Threshold, and
// returns the levels in the order given.
func (d *Detector) Sweep(response *ndarray.Array, thresholds []float64) []Level {
	levels := make([]Level, len(thresholds))
	for i, thr := range thresholds {
		levels[i] = Level{
			Threshold: thr,
			Peaks:     findPeaks(response, d.opts.MinDistance, thr, d.opts.MaxPeaks),
		}
	}
	return levels
}
