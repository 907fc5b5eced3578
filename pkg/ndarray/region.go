package ndarray

import (
	"fmt"

	"gorgonia.org/tensor"

	"manet/pkg/errs"
)

// Region copies the half-open block [lo, hi) out of the array.
// Every axis must satisfy 0 <= lo[i] < hi[i] <= shape[i].
func (a *Array) Region(lo, hi []int) (*Array, error) {
	if err := a.checkBlock(lo, hi); err != nil {
		return nil, err
	}
	shape := make([]int, len(lo))
	for i := range lo {
		shape[i] = hi[i] - lo[i]
	}
	if product(shape) == 1 {
		out := New(shape...)
		out.data[0] = a.At(lo...)
		return out, nil
	}

	view, err := a.t.Slice(ranges(lo, hi)...)
	if err != nil {
		return nil, fmt.Errorf("slicing %v: %w", a, err)
	}
	dense, ok := view.Materialize().(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("region of %v is not a dense tensor", a)
	}
	data, ok := dense.Data().([]float64)
	if !ok || len(data) != product(shape) {
		return nil, fmt.Errorf("region of %v has unexpected storage", a)
	}
	return wrap(append([]float64(nil), data...), shape), nil
}

// Paste writes src into the array with src's origin placed at `at`.
// The whole of src must fit inside the array.
func (a *Array) Paste(src *Array, at []int) error {
	if len(at) != a.NDim() || src.NDim() != a.NDim() {
		return errs.Invalid("paste of %dD array at %v into %dD array", src.NDim(), at, a.NDim())
	}
	hi := make([]int, len(at))
	for i := range at {
		hi[i] = at[i] + src.shape[i]
	}
	if err := a.checkBlock(at, hi); err != nil {
		return err
	}
	if src.Size() == 1 {
		a.Set(src.data[0], at...)
		return nil
	}

	view, err := a.t.Slice(ranges(at, hi)...)
	if err != nil {
		return fmt.Errorf("slicing %v: %w", a, err)
	}
	if err := tensor.Copy(view, src.t); err != nil {
		return fmt.Errorf("pasting %v into %v: %w", src, a, err)
	}
	return nil
}

func (a *Array) checkBlock(lo, hi []int) error {
	if len(lo) != a.NDim() || len(hi) != a.NDim() {
		return errs.Invalid("block [%v, %v) does not match %dD array", lo, hi, a.NDim())
	}
	for i := range lo {
		if lo[i] < 0 || hi[i] > a.shape[i] || lo[i] >= hi[i] {
			return errs.Invalid("block [%v, %v) out of range for shape %v", lo, hi, a.shape)
		}
	}
	return nil
}

func ranges(lo, hi []int) []tensor.Slice {
	s := make([]tensor.Slice, len(lo))
	for i := range lo {
		s[i] = tensor.S(lo[i], hi[i])
	}
	return s
}
