package colgroup

import (
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/cla/bitmap"
	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/estim"
	"github.com/hupe1980/cla/internal/simd"
	"github.com/hupe1980/cla/kahan"
)

// Uncompressed holds plain row-major values.
type Uncompressed struct {
	base
	values []float64 // numRows * numCols
}

// NewUncompressed copies cols of m into an uncompressed group.
func NewUncompressed(cols []int, m core.Matrix) (*Uncompressed, error) {
	rows, numCols := m.Dims()
	if err := core.CheckColumns(cols, numCols); err != nil {
		return nil, err
	}
	if rows <= 0 {
		return nil, fmt.Errorf("%w: row count %d", core.ErrInvalidArgument, rows)
	}
	nc := len(cols)
	values := make([]float64, rows*nc)
	for r := 0; r < rows; r++ {
		row := values[r*nc : (r+1)*nc]
		for j, c := range cols {
			row[j] = m.At(r, c)
		}
	}
	return newUncompressed(slices.Clone(cols), rows, values), nil
}

// uncompressedFromBitmap expands bm back into dense values.
func uncompressedFromBitmap(bm *bitmap.Bitmap) *Uncompressed {
	nc, rows := bm.NumCols(), bm.NumRows()
	values := make([]float64, rows*nc)
	for k := 0; k < bm.NumValues(); k++ {
		t := bm.Values(k)
		for _, r := range bm.Offsets(k) {
			copy(values[int(r)*nc:], t)
		}
	}
	return newUncompressed(slices.Clone(bm.Columns()), rows, values)
}

func newUncompressed(cols []int, numRows int, values []float64) *Uncompressed {
	g := &Uncompressed{
		base:   base{cols: cols, numRows: numRows},
		values: values,
	}
	for r := 0; r < numRows && !g.zeros; r++ {
		g.zeros = allZero(g.row(r))
	}
	return g
}

func (g *Uncompressed) row(r int) []float64 {
	nc := len(g.cols)
	return g.values[r*nc : (r+1)*nc]
}

func (g *Uncompressed) Scheme() core.Scheme { return core.SchemeUncompressed }

// NumValues returns 0; uncompressed groups have no dictionary.
func (g *Uncompressed) NumValues() int { return 0 }

func (g *Uncompressed) Dictionary() []float64 { return nil }

// Values returns the row-major cell values. The slice is shared.
func (g *Uncompressed) Values() []float64 { return g.values }

func (g *Uncompressed) Get(row, col int) float64 {
	return g.values[row*len(g.cols)+col]
}

func (g *Uncompressed) DecompressInto(target core.MutableMatrix, rr core.RowRange) {
	for r := rr.Lo; r < rr.Hi; r++ {
		for j, v := range g.row(r) {
			target.Set(r, g.cols[j], v)
		}
	}
}

func (g *Uncompressed) ScalarOp(op ScalarOp) ColGroup {
	values := make([]float64, len(g.values))
	for i, v := range g.values {
		values[i] = op(v)
	}
	return newUncompressed(g.cols, g.numRows, values)
}

func (g *Uncompressed) RightMultByVector(v, result []float64, rr core.RowRange) {
	sub := make([]float64, len(g.cols))
	simd.Gather(sub, v, g.cols)
	for r := rr.Lo; r < rr.Hi; r++ {
		result[r] += simd.Dot(g.row(r), sub)
	}
}

func (g *Uncompressed) LeftMultByRowVector(v, result []float64) {
	acc := make([]float64, len(g.cols))
	for r := 0; r < g.numRows; r++ {
		if v[r] != 0 {
			simd.AddScaled(acc, v[r], g.row(r))
		}
	}
	simd.ScatterAdd(result, acc, g.cols)
}

func (g *Uncompressed) Sum() float64 {
	return kahan.Of(g.values)
}

func (g *Uncompressed) RowSums(acc []kahan.Sum, rr core.RowRange) {
	for r := rr.Lo; r < rr.Hi; r++ {
		acc[r].Add(kahan.Of(g.row(r)))
	}
}

func (g *Uncompressed) ColSums(result []float64) {
	nc := len(g.cols)
	for j, col := range g.cols {
		var acc kahan.Sum
		for i := j; i < len(g.values); i += nc {
			acc.Add(g.values[i])
		}
		result[col] += acc.Value()
	}
}

func (g *Uncompressed) Min() float64 {
	lo := math.Inf(1)
	for _, v := range g.values {
		lo = min(lo, v)
	}
	return lo
}

func (g *Uncompressed) Max() float64 {
	hi := math.Inf(-1)
	for _, v := range g.values {
		hi = max(hi, v)
	}
	return hi
}

// Counts returns nil; uncompressed groups have no dictionary.
func (g *Uncompressed) Counts(core.RowRange) []int { return nil }

func (g *Uncompressed) CountNonZerosPerRow(out []int, rr core.RowRange) {
	for r := rr.Lo; r < rr.Hi; r++ {
		for _, v := range g.row(r) {
			if v != 0 {
				out[r]++
			}
		}
	}
}

func (g *Uncompressed) EstimateInMemorySize() int64 {
	return estim.DenseSize(g.numRows, len(g.cols))
}
