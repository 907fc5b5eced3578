// Package errs defines the error kinds shared by the geometry packages.
//
// Callers match kinds with errors.Is. ErrEmptyMask and ErrUnsupportedConfiguration
// both wrap ErrInvalidArgument, so a caller that only cares about bad input can test
// for ErrInvalidArgument alone.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports malformed boxes, masks, shapes or options.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyMask reports a mask without any non-zero voxel where one is required.
	ErrEmptyMask = fmt.Errorf("%w: mask contains no non-zero entries", ErrInvalidArgument)

	// ErrUnsupportedConfiguration reports an operation restricted to fewer
	// dimensions than the input has.
	ErrUnsupportedConfiguration = fmt.Errorf("%w: unsupported configuration", ErrInvalidArgument)
)

// Invalid returns an ErrInvalidArgument with a formatted message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
