package cla

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/cla/compress"
	"github.com/hupe1980/cla/core"
)

var (
	// ErrInvalidArgument is returned for malformed input.
	ErrInvalidArgument = core.ErrInvalidArgument

	// ErrOutOfRange is returned when a row or column index lies outside the matrix.
	ErrOutOfRange = core.ErrOutOfRange

	// ErrInvariant marks an internal defect.
	ErrInvariant = core.ErrInvariant

	// ErrCorrupted is returned when a container file fails validation.
	ErrCorrupted = core.ErrCorrupted

	// ErrUnsupported is returned for unknown schemes or format versions.
	ErrUnsupported = core.ErrUnsupported

	// ErrInvalidColumnGroups is returned when column groups overlap, leave a
	// column uncovered where a cover is required, or disagree on the row count.
	ErrInvalidColumnGroups = fmt.Errorf("%w: invalid column groups", core.ErrInvalidArgument)
)

// ErrDimensionMismatch indicates a vector whose length does not match the
// matrix.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Op       string
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("%s: dimension mismatch: expected %d, got %d", e.Op, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func dimensionMismatch(op string, expected, actual int) error {
	return &ErrDimensionMismatch{Op: op, Expected: expected, Actual: actual, cause: ErrInvalidArgument}
}

// ErrGroupFailed reports the candidate column set whose compression failed.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrGroupFailed struct {
	Index   int
	Columns []int
	cause   error
}

func (e *ErrGroupFailed) Error() string {
	return fmt.Sprintf("column group %d %v: %v", e.Index, e.Columns, e.cause)
}

func (e *ErrGroupFailed) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ge *compress.GroupError
	if errors.As(err, &ge) {
		return &ErrGroupFailed{Index: ge.Index, Columns: slices.Clone(ge.Columns), cause: ge.Err}
	}

	return err
}
