package cla

import (
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cla/colgroup"
	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/estim"
	"github.com/hupe1980/cla/internal/simd"
	"github.com/hupe1980/cla/kahan"
)

// Matrix is a compressed matrix: column groups that cover every column
// exactly once. It is immutable and safe for concurrent use.
type Matrix struct {
	rows, cols int
	groups     []colgroup.ColGroup
	owner      []cell // per column: group and position inside it
	opts       options
}

type cell struct {
	group, pos int32
}

var _ core.Matrix = (*Matrix)(nil)

// NewMatrix assembles a compressed matrix from groups, which must cover the
// columns [0, cols) exactly once and all hold rows rows.
func NewMatrix(rows, cols int, groups []colgroup.ColGroup, optFns ...Option) (*Matrix, error) {
	o := applyOptions(optFns)
	return newMatrix(rows, cols, groups, &o)
}

func newMatrix(rows, cols int, groups []colgroup.ColGroup, o *options) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d matrix", ErrInvalidArgument, rows, cols)
	}
	if len(groups) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d groups", ErrInvalidArgument, len(groups))
	}
	owner := make([]cell, cols)
	seen := bitset.New(uint(cols))
	for gi, g := range groups {
		if g == nil {
			return nil, fmt.Errorf("%w: group %d is nil", ErrInvalidColumnGroups, gi)
		}
		if g.NumRows() != rows {
			return nil, fmt.Errorf("%w: group %d has %d rows, matrix %d", ErrInvalidColumnGroups, gi, g.NumRows(), rows)
		}
		if err := core.CheckColumns(g.ColIndexes(), cols); err != nil {
			return nil, fmt.Errorf("group %d: %w", gi, err)
		}
		for j, c := range g.ColIndexes() {
			if seen.Test(uint(c)) {
				return nil, fmt.Errorf("%w: column %d held by more than one group", ErrInvalidColumnGroups, c)
			}
			seen.Set(uint(c))
			owner[c] = cell{group: int32(gi), pos: int32(j)} //nolint:gosec
		}
	}
	if n := seen.Count(); n != uint(cols) {
		return nil, fmt.Errorf("%w: groups cover %d of %d columns", ErrInvalidColumnGroups, n, cols)
	}
	return &Matrix{rows: rows, cols: cols, groups: groups, owner: owner, opts: *o}, nil
}

// Groups returns the column groups. The slice is shared and must not be
// modified.
func (m *Matrix) Groups() []colgroup.ColGroup { return m.groups }

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (r, c int) { return m.rows, m.cols }

// At returns the value at row i, column j. It panics if the indexes are out
// of range, like gonum matrices do.
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.rows {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= m.cols {
		panic(mat.ErrColAccess)
	}
	o := m.owner[j]
	return m.groups[o.group].Get(i, int(o.pos))
}

// Decompress returns the matrix as a dense gonum matrix.
func (m *Matrix) Decompress() *mat.Dense {
	out := mat.NewDense(m.rows, m.cols, nil)
	m.DecompressInto(out)
	return out
}

// DecompressInto writes every cell into target, which must be at least
// rows x cols. Groups write disjoint columns and run concurrently.
func (m *Matrix) DecompressInto(target core.MutableMatrix) {
	all := core.AllRows(m.rows)
	m.forGroups(func(g colgroup.ColGroup) {
		g.DecompressInto(target, all)
	})
}

// RightMultByVector returns m * v.
func (m *Matrix) RightMultByVector(v []float64) ([]float64, error) {
	if len(v) != m.cols {
		return nil, dimensionMismatch("RightMultByVector", m.cols, len(v))
	}
	result := make([]float64, m.rows)
	m.forRowBlocks(func(rr core.RowRange) {
		colgroup.RightMultByVectorBatch(m.groups, v, result, rr)
	})
	return result, nil
}

// LeftMultByRowVector returns v^T * m.
func (m *Matrix) LeftMultByRowVector(v []float64) ([]float64, error) {
	if len(v) != m.rows {
		return nil, dimensionMismatch("LeftMultByRowVector", m.rows, len(v))
	}
	result := make([]float64, m.cols)
	m.forGroups(func(g colgroup.ColGroup) {
		g.LeftMultByRowVector(v, result)
	})
	return result, nil
}

// Sum returns the sum of all cells.
func (m *Matrix) Sum() float64 {
	var acc kahan.Sum
	for _, g := range m.groups {
		acc.Add(g.Sum())
	}
	return acc.Value()
}

// RowSums returns the sum of every row.
func (m *Matrix) RowSums() []float64 {
	acc := make([]kahan.Sum, m.rows)
	m.forRowBlocks(func(rr core.RowRange) {
		for _, g := range m.groups {
			g.RowSums(acc, rr)
		}
	})
	out := make([]float64, m.rows)
	for i := range acc {
		out[i] = acc[i].Value()
	}
	return out
}

// ColSums returns the sum of every column.
func (m *Matrix) ColSums() []float64 {
	result := make([]float64, m.cols)
	m.forGroups(func(g colgroup.ColGroup) {
		g.ColSums(result)
	})
	return result
}

// Min returns the smallest cell value.
func (m *Matrix) Min() float64 {
	lo := math.Inf(1)
	for _, g := range m.groups {
		lo = math.Min(lo, g.Min())
	}
	return lo
}

// Max returns the largest cell value.
func (m *Matrix) Max() float64 {
	hi := math.Inf(-1)
	for _, g := range m.groups {
		hi = math.Max(hi, g.Max())
	}
	return hi
}

// CountNonZerosPerRow returns the number of nonzero cells of every row.
func (m *Matrix) CountNonZerosPerRow() []int {
	out := make([]int, m.rows)
	m.forRowBlocks(func(rr core.RowRange) {
		for _, g := range m.groups {
			g.CountNonZerosPerRow(out, rr)
		}
	})
	return out
}

// NonZeros returns the number of nonzero cells.
func (m *Matrix) NonZeros() int64 {
	var n int64
	for _, c := range m.CountNonZerosPerRow() {
		n += int64(c)
	}
	return n
}

// ScalarOp returns a new matrix with op applied to every cell. Dictionary
// groups only map their dictionaries and share their codes with m.
func (m *Matrix) ScalarOp(op colgroup.ScalarOp) *Matrix {
	groups := make([]colgroup.ColGroup, len(m.groups))
	for i, g := range m.groups {
		groups[i] = g.ScalarOp(op)
	}
	return &Matrix{rows: m.rows, cols: m.cols, groups: groups, owner: m.owner, opts: m.opts}
}

// InMemorySize returns the estimated in-memory size of all groups in bytes.
func (m *Matrix) InMemorySize() int64 {
	var n int64
	for _, g := range m.groups {
		n += g.EstimateInMemorySize()
	}
	return n
}

// UncompressedSize returns the size of the matrix values stored dense:
// eight bytes per cell, without slice or header overhead.
func (m *Matrix) UncompressedSize() int64 {
	return estim.Float64Size * int64(m.rows) * int64(m.cols)
}

// CompressionRatio returns UncompressedSize divided by InMemorySize.
func (m *Matrix) CompressionRatio() float64 {
	size := m.InMemorySize()
	if size <= 0 {
		return 0
	}
	return float64(m.UncompressedSize()) / float64(size)
}

// forGroups runs fn on every group. Group kernels that write per-column
// outputs touch disjoint entries, so groups may run concurrently.
func (m *Matrix) forGroups(fn func(g colgroup.ColGroup)) {
	if m.opts.parallelism <= 1 || len(m.groups) <= 1 {
		for _, g := range m.groups {
			fn(g)
		}
		return
	}
	var eg errgroup.Group
	eg.SetLimit(m.opts.parallelism)
	for _, g := range m.groups {
		eg.Go(func() error {
			fn(g)
			return nil
		})
	}
	_ = eg.Wait()
}

// forRowBlocks splits the rows into at most parallelism ranges aligned to
// the kernel row block and runs fn on each. Per-row outputs of distinct
// ranges are disjoint.
func (m *Matrix) forRowBlocks(fn func(rr core.RowRange)) {
	bs := simd.RowBlockSize()
	blocks := (m.rows + bs - 1) / bs
	workers := min(m.opts.parallelism, blocks)
	if workers <= 1 {
		fn(core.AllRows(m.rows))
		return
	}
	per := (blocks + workers - 1) / workers * bs
	var eg errgroup.Group
	for lo := 0; lo < m.rows; lo += per {
		rr := core.Rows(lo, min(lo+per, m.rows))
		eg.Go(func() error {
			fn(rr)
			return nil
		})
	}
	_ = eg.Wait()
}
