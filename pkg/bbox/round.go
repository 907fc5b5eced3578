package bbox

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Rounder performs stochastic rounding: x is rounded up with probability equal to
// its fractional part x - floor(x) and down otherwise.
//
// A Rounder is not safe for concurrent use.
type Rounder struct {
	src rand.Source
}

// NewRounder returns a Rounder drawing from src. A nil src uses the global
// generator of golang.org/x/exp/rand.
func NewRounder(src rand.Source) *Rounder {
	return &Rounder{src: src}
}

// Round stochastically rounds a single value. Integral values are returned as is
// and do not consume randomness.
func (r *Rounder) Round(x float64) int {
	fl := math.Floor(x)
	frac := x - fl
	if frac == 0 {
		return int(fl)
	}
	up := distuv.Bernoulli{P: frac, Src: r.src}
	return int(fl) + int(up.Rand())
}

// RoundAll rounds every component independently.
func (r *Rounder) RoundAll(xs []float64) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = r.Round(x)
	}
	return out
}
