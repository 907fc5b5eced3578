// Package ndarray provides the n-dimensional array used by the geometry packages.
//
// An Array wraps a float64 gorgonia tensor. Its backing slice is row-major, the
// same layout the volume code uses for MRI data: for a shape (d0, d1, ..., dn-1)
// the element at index (i0, ..., in-1) lives at offset i0*s0 + ... + in-1*sn-1
// where s is the row-major stride. Integer images are carried as float64.
//
// The Array keeps its own shape so that unit axes are never collapsed, which the
// tensor does when slicing.
package ndarray

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"

	"manet/pkg/errs"
)

// Array is an n-dimensional row-major float64 array.
type Array struct {
	t       *tensor.Dense
	shape   []int
	strides []int
	data    []float64
}

// New returns a zero-filled array of the given shape.
// It panics if the shape is empty or has a non-positive axis; use FromSlice
// for shapes coming from untrusted input.
func New(shape ...int) *Array {
	if err := checkShape(shape); err != nil {
		panic(err)
	}
	return wrap(make([]float64, product(shape)), shape)
}

// Full returns an array of the given shape where every element is value.
func Full(value float64, shape ...int) *Array {
	a := New(shape...)
	if value != 0 {
		for i := range a.data {
			a.data[i] = value
		}
	}
	return a
}

// FromSlice wraps data in an array of the given shape. The slice is copied.
func FromSlice(data []float64, shape ...int) (*Array, error) {
	if err := checkShape(shape); err != nil {
		return nil, err
	}
	if n := product(shape); n != len(data) {
		return nil, errs.Invalid("data length %d does not match shape %v (%d elements)", len(data), shape, n)
	}
	return wrap(append([]float64(nil), data...), shape), nil
}

// FromRows builds a 2D array from a slice of equally long rows.
func FromRows(rows [][]float64) (*Array, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errs.Invalid("rows must be non-empty")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errs.Invalid("row %d has %d columns, expected %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return FromSlice(data, len(rows), cols)
}

// FromDense copies a gonum matrix into a 2D array.
func FromDense(m mat.Matrix) *Array {
	r, c := m.Dims()
	a := New(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			a.data[i*c+j] = m.At(i, j)
		}
	}
	return a
}

// FromTensor copies a float64 tensor into an array.
func FromTensor(t tensor.Tensor) (*Array, error) {
	if t.Dtype() != tensor.Float64 {
		return nil, errs.Invalid("tensor of %v, expected float64", t.Dtype())
	}
	shape := []int(t.Shape())
	if err := checkShape(shape); err != nil {
		return nil, err
	}
	dense, ok := t.(*tensor.Dense)
	if !ok {
		return nil, errs.Invalid("unsupported tensor type %T", t)
	}
	m, ok := dense.Materialize().(*tensor.Dense)
	if !ok {
		return nil, errs.Invalid("tensor could not be materialized")
	}
	data, ok := m.Data().([]float64)
	if !ok || len(data) != product(shape) {
		return nil, errs.Invalid("tensor data does not match shape %v", shape)
	}
	return wrap(append([]float64(nil), data...), shape), nil
}

// wrap takes ownership of data.
func wrap(data []float64, shape []int) *Array {
	shape = append([]int(nil), shape...)
	t := tensor.New(tensor.WithShape(shape...), tensor.WithBacking(data))
	return &Array{t: t, shape: shape, strides: strides(shape), data: data}
}

// Tensor returns the tensor backing the array. It shares storage with the array.
func (a *Array) Tensor() *tensor.Dense { return a.t }

// Dense returns a copy of a 2D array as a gonum dense matrix.
func (a *Array) Dense() (*mat.Dense, error) {
	if a.NDim() != 2 {
		return nil, fmt.Errorf("%w: dense conversion needs a 2D array, got %dD", errs.ErrUnsupportedConfiguration, a.NDim())
	}
	return mat.NewDense(a.shape[0], a.shape[1], append([]float64(nil), a.data...)), nil
}

// Shape returns a copy of the array's shape.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// NDim returns the number of axes.
func (a *Array) NDim() int { return len(a.shape) }

// Size returns the number of elements.
func (a *Array) Size() int { return len(a.data) }

// Data returns the underlying row-major storage. Mutating it mutates the array.
func (a *Array) Data() []float64 { return a.data }

// Offset returns the flat offset of idx. It panics on an out-of-range index.
func (a *Array) Offset(idx ...int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("ndarray: index %v has %d axes, array has %d", idx, len(idx), len(a.shape)))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= a.shape[i] {
			panic(fmt.Sprintf("ndarray: index %v out of range for shape %v", idx, a.shape))
		}
		off += v * a.strides[i]
	}
	return off
}

// Unravel converts a flat offset into a per-axis index.
func (a *Array) Unravel(offset int) []int {
	idx := make([]int, len(a.shape))
	for i, s := range a.strides {
		idx[i] = offset / s
		offset %= s
	}
	return idx
}

// At returns the element at idx.
func (a *Array) At(idx ...int) float64 { return a.data[a.Offset(idx...)] }

// Set stores v at idx.
func (a *Array) Set(v float64, idx ...int) { a.data[a.Offset(idx...)] = v }

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	return wrap(append([]float64(nil), a.data...), a.shape)
}

// Max returns the largest element.
func (a *Array) Max() float64 { return floats.Max(a.data) }

// Min returns the smallest element.
func (a *Array) Min() float64 { return floats.Min(a.data) }

// CountNonzero returns the number of non-zero elements.
func (a *Array) CountNonzero() int {
	n := 0
	for _, v := range a.data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Nonzero returns the flat offsets of all non-zero elements in row-major order.
func (a *Array) Nonzero() []int {
	var out []int
	for i, v := range a.data {
		if v != 0 {
			out = append(out, i)
		}
	}
	return out
}

// IsBinary reports whether every element is 0 or 1.
func (a *Array) IsBinary() bool {
	for _, v := range a.data {
		if v != 0 && v != 1 {
			return false
		}
	}
	return true
}

// SameShape reports whether a and b have identical shapes.
func (a *Array) SameShape(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	return true
}

// String formats the array's shape, not its contents.
func (a *Array) String() string {
	parts := make([]string, len(a.shape))
	for i, s := range a.shape {
		parts[i] = fmt.Sprint(s)
	}
	return "Array(" + strings.Join(parts, "x") + ")"
}

func checkShape(shape []int) error {
	if len(shape) == 0 {
		return errs.Invalid("shape must have at least one axis")
	}
	for i, s := range shape {
		if s <= 0 {
			return errs.Invalid("axis %d of shape %v must be positive", i, shape)
		}
	}
	return nil
}

func strides(shape []int) []int {
	st := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= shape[i]
	}
	return st
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
