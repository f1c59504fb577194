package core

import "fmt"

// RowRange is the half-open row interval [Lo, Hi).
type RowRange struct {
	Lo int
	Hi int
}

// Rows returns the range [lo, hi).
func Rows(lo, hi int) RowRange {
	return RowRange{Lo: lo, Hi: hi}
}

// AllRows returns [0, n).
func AllRows(n int) RowRange {
	return RowRange{Lo: 0, Hi: n}
}

// Len returns the number of rows in the range.
func (r RowRange) Len() int {
	if r.Hi <= r.Lo {
		return 0
	}
	return r.Hi - r.Lo
}

// Validate checks that the range lies within [0, numRows].
func (r RowRange) Validate(numRows int) error {
	if r.Lo < 0 || r.Hi > numRows || r.Lo > r.Hi {
		return fmt.Errorf("%w: row range [%d, %d) for %d rows", ErrOutOfRange, r.Lo, r.Hi, numRows)
	}
	return nil
}

// String implements fmt.Stringer.
func (r RowRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Lo, r.Hi)
}
