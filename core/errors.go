package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for malformed input (empty column sets,
	// non-positive row counts, mismatched vector lengths).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange is returned when a column or row index lies outside the matrix.
	ErrOutOfRange = errors.New("index out of range")

	// ErrInvariant marks an internal invariant violation. It always indicates a
	// defect and is never a recoverable condition.
	ErrInvariant = errors.New("internal invariant violation")

	// ErrCorrupted is returned when serialized data fails validation.
	ErrCorrupted = errors.New("corrupted data")

	// ErrUnsupported is returned for unknown schemes or format versions.
	ErrUnsupported = errors.New("unsupported")

	// ErrEmptyColumns is returned when a column index set is empty.
	ErrEmptyColumns = fmt.Errorf("%w: empty column index set", ErrInvalidArgument)
)

// ColumnIndexError reports a column index outside [0, NumCols).
type ColumnIndexError struct {
	Index   int
	NumCols int
}

func (e *ColumnIndexError) Error() string {
	return fmt.Sprintf("column index %d out of range for %d columns", e.Index, e.NumCols)
}

func (e *ColumnIndexError) Unwrap() error { return ErrOutOfRange }

// InvariantError carries the context needed to diagnose an invariant violation.
type InvariantError struct {
	Op      string
	Columns []int
	Detail  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: columns %v: %s", e.Op, e.Columns, e.Detail)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// Invariantf builds an InvariantError with a formatted detail message.
func Invariantf(op string, cols []int, format string, args ...any) error {
	return &InvariantError{Op: op, Columns: cols, Detail: fmt.Sprintf(format, args...)}
}
