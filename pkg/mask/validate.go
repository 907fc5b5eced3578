package mask

import (
	"fmt"
	"strings"

	"manet/pkg/errs"
	"manet/pkg/ndarray"
)

// AssertNDim verifies that a is non-empty and has one of the allowed
// dimensionalities. name is the argument name used in the error message.
func AssertNDim(a *ndarray.Array, name string, dims ...int) error {
	if a == nil || a.Size() == 0 {
		return errs.Invalid("the parameter `%s` cannot be an empty array", name)
	}
	for _, d := range dims {
		if a.NDim() == d {
			return nil
		}
	}
	allowed := make([]string, len(dims))
	for i, d := range dims {
		allowed[i] = fmt.Sprint(d)
	}
	return fmt.Errorf("%w: the parameter `%s` must be a %s-dimensional array, got %dD",
		errs.ErrUnsupportedConfiguration, name, strings.Join(allowed, "-or-"), a.NDim())
}

// AssertBinary verifies that a only holds 0 and 1 and is not all zero.
func AssertBinary(a *ndarray.Array, name string) error {
	if !a.IsBinary() {
		return errs.Invalid("the parameter `%s` has to be a binary-valued array", name)
	}
	if a.CountNonzero() == 0 {
		return fmt.Errorf("%w: the parameter `%s` has to be a non-zero array", errs.ErrEmptyMask, name)
	}
	return nil
}
