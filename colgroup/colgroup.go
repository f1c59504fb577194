package colgroup

import (
	"io"

	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/kahan"
)

// ColGroup is a compressed representation of a subset of a matrix's columns.
//
// Column positions passed to Get are relative to the group (0..NumCols-1).
// Kernels only read group state and write to caller-supplied outputs, so they
// may run concurrently over disjoint row ranges of the same group. Callers
// size outputs to the parent matrix: result vectors of RightMultByVector and
// RowSums have one entry per row, those of LeftMultByRowVector and ColSums one
// entry per matrix column.
type ColGroup interface {
	Scheme() core.Scheme
	ColIndexes() []int
	NumCols() int
	NumRows() int

	// ContainsZeros reports whether some row of the group is all zeros.
	ContainsZeros() bool

	// NumValues returns the number of dictionary tuples. Uncompressed groups
	// have none.
	NumValues() int

	// Dictionary returns the row-major tuple dictionary, or nil.
	// The slice is shared and must not be modified.
	Dictionary() []float64

	Get(row, col int) float64

	// DecompressInto writes the group's cells of rows rr into target.
	DecompressInto(target core.MutableMatrix, rr core.RowRange)

	// ScalarOp returns a new group with op applied to every cell.
	ScalarOp(op ScalarOp) ColGroup

	// RightMultByVector adds (G * v[cols])[r] to result[r] for r in rr.
	RightMultByVector(v, result []float64, rr core.RowRange)

	// LeftMultByRowVector adds (v^T * G)[j] to result[cols[j]].
	LeftMultByRowVector(v, result []float64)

	Sum() float64

	// RowSums adds each row's sum in rr to the matching accumulator.
	RowSums(acc []kahan.Sum, rr core.RowRange)

	// ColSums adds each column's sum to result[cols[j]].
	ColSums(result []float64)

	Min() float64
	Max() float64

	// Counts returns the number of rows in rr per dictionary tuple.
	Counts(rr core.RowRange) []int

	// CountNonZerosPerRow adds each row's nonzero count in rr to out.
	CountNonZerosPerRow(out []int, rr core.RowRange)

	EstimateInMemorySize() int64

	// ExactSizeOnDisk returns the number of bytes Write emits.
	ExactSizeOnDisk(skipDict bool) int64

	// Write serializes the group. With skipDict the dictionary is omitted
	// and must be supplied again when reading.
	Write(w io.Writer, skipDict bool) (int64, error)

	sealed()
}

// ScalarOp is an element-wise operation on cell values.
type ScalarOp func(float64) float64

// Multiply returns x -> x*c.
func Multiply(c float64) ScalarOp {
	return func(x float64) float64 { return x * c }
}

// Add returns x -> x+c.
func Add(c float64) ScalarOp {
	return func(x float64) float64 { return x + c }
}

// sparseSafe reports whether op maps zero to zero.
func (op ScalarOp) sparseSafe() bool {
	return op(0) == 0
}

type base struct {
	cols    []int
	numRows int
	zeros   bool
}

func (b *base) ColIndexes() []int   { return b.cols }
func (b *base) NumCols() int        { return len(b.cols) }
func (b *base) NumRows() int        { return b.numRows }
func (b *base) ContainsZeros() bool { return b.zeros }
func (b *base) sealed()             {}
