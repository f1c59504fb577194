package core

// Matrix is read-only random access to a numeric matrix.
//
// The method set is a subset of gonum's mat.Matrix, so *mat.Dense (and every
// other gonum matrix) can be passed directly as a compression source.
type Matrix interface {
	// Dims returns the number of rows and columns.
	Dims() (r, c int)

	// At returns the value at row i, column j.
	At(i, j int) float64
}

// MutableMatrix is a Matrix that can be written to.
// It is the decompression target; *mat.Dense satisfies it.
type MutableMatrix interface {
	Matrix

	// Set writes v at row i, column j.
	Set(i, j int, v float64)
}

// CheckColumns validates a column index set against a matrix with numCols
// columns. The set must be non-empty and every index in range.
func CheckColumns(cols []int, numCols int) error {
	if len(cols) == 0 {
		return ErrEmptyColumns
	}
	for _, c := range cols {
		if c < 0 || c >= numCols {
			return &ColumnIndexError{Index: c, NumCols: numCols}
		}
	}
	return nil
}
