package colgroup

import (
	"math"
	"slices"

	"github.com/hupe1980/cla/bitmap"
	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/estim"
	"github.com/hupe1980/cla/kahan"
)

// Code is the element type of a DDC code array.
type Code interface {
	~uint8 | ~uint16
}

// DDC is a dense dictionary-coded group: a tuple dictionary plus one code per
// row. Kernels are instantiated per code width.
type DDC[C Code] struct {
	base
	dict
	codes []C
}

type (
	// DDC1 addresses up to 255 tuples with one-byte codes.
	DDC1 = DDC[uint8]
	// DDC2 addresses up to 65534 tuples with two-byte codes.
	DDC2 = DDC[uint16]
)

// NewDDC1 builds a one-byte DDC group from bm.
func NewDDC1(bm *bitmap.Bitmap) (*DDC1, error) {
	return newDDC[uint8](bm)
}

// NewDDC2 builds a two-byte DDC group from bm.
func NewDDC2(bm *bitmap.Bitmap) (*DDC2, error) {
	return newDDC[uint16](bm)
}

func isWide[C Code]() bool {
	var c C
	c--
	return uint64(c) > math.MaxUint8
}

func maxValues[C Code]() int {
	if isWide[C]() {
		return estim.MaxDDC2Values
	}
	return estim.MaxDDC1Values
}

// newDDC fills every row not covered by bm with the all-zero tuple, reusing
// a stored zero tuple when bm has one and appending one otherwise.
func newDDC[C Code](bm *bitmap.Bitmap) (*DDC[C], error) {
	nc, numRows := bm.NumCols(), bm.NumRows()
	values := slices.Clone(bm.AllValues())
	nv := bm.NumValues()

	zeroCode := -1
	if bm.TotalOffsets() < numRows {
		zeroCode = bm.ZeroTupleIndex()
		if zeroCode < 0 {
			values = append(values, make([]float64, nc)...)
			zeroCode = nv
			nv++
		}
	}
	if nv > maxValues[C]() {
		return nil, core.Invariantf("colgroup.NewDDC", bm.Columns(),
			"%d dictionary tuples exceed code capacity %d", nv, maxValues[C]())
	}

	codes := make([]C, numRows)
	if zeroCode > 0 {
		z := C(zeroCode)
		for i := range codes {
			codes[i] = z
		}
	}
	for k := 0; k < bm.NumValues(); k++ {
		c := C(k)
		for _, r := range bm.Offsets(k) {
			codes[r] = c
		}
	}

	g := &DDC[C]{
		base:  base{cols: slices.Clone(bm.Columns()), numRows: numRows},
		dict:  dict{values: values, nc: nc},
		codes: codes,
	}
	g.zeros = zeroCode >= 0 || g.hasZeroTuple()
	return g, nil
}

// Scheme returns SchemeDDC1 or SchemeDDC2 depending on the code width.
func (g *DDC[C]) Scheme() core.Scheme {
	if isWide[C]() {
		return core.SchemeDDC2
	}
	return core.SchemeDDC1
}

// Codes returns the per-row code array. The slice is shared.
func (g *DDC[C]) Codes() []C { return g.codes }

func (g *DDC[C]) Get(row, col int) float64 {
	return g.values[int(g.codes[row])*g.nc+col]
}

func (g *DDC[C]) DecompressInto(target core.MutableMatrix, rr core.RowRange) {
	for r := rr.Lo; r < rr.Hi; r++ {
		t := g.tuple(int(g.codes[r]))
		for j, col := range g.cols {
			target.Set(r, col, t[j])
		}
	}
}

// ScalarOp maps the dictionary only; the result shares the code array.
func (g *DDC[C]) ScalarOp(op ScalarOp) ColGroup {
	d := g.mapValues(op)
	out := &DDC[C]{
		base:  base{cols: g.cols, numRows: g.numRows},
		dict:  d,
		codes: g.codes,
	}
	out.zeros = out.hasZeroTuple()
	return out
}

func (g *DDC[C]) RightMultByVector(v, result []float64, rr core.RowRange) {
	g.addRows(g.rowPreaggregate(v), result, rr.Lo, rr.Hi)
}

func (g *DDC[C]) rowPreaggregate(v []float64) []float64 {
	return g.preaggregate(v, g.cols)
}

// addRows adds pre[code] into result for every row in [lo, hi).
func (g *DDC[C]) addRows(pre, result []float64, lo, hi int) {
	out := result[lo:hi]
	for i, c := range g.codes[lo:hi] {
		out[i] += pre[int(c)]
	}
}

func (g *DDC[C]) LeftMultByRowVector(v, result []float64) {
	agg := make([]float64, g.NumValues())
	for r, c := range g.codes {
		agg[int(c)] += v[r]
	}
	g.scatterScaled(agg, g.cols, result)
}

func (g *DDC[C]) Counts(rr core.RowRange) []int {
	counts := make([]int, g.NumValues())
	for _, c := range g.codes[rr.Lo:rr.Hi] {
		counts[int(c)]++
	}
	return counts
}

func (g *DDC[C]) Sum() float64 {
	return g.sumCounts(g.Counts(core.AllRows(g.numRows)))
}

func (g *DDC[C]) RowSums(acc []kahan.Sum, rr core.RowRange) {
	sums := g.tupleSums()
	for r := rr.Lo; r < rr.Hi; r++ {
		acc[r].Add(sums[int(g.codes[r])])
	}
}

func (g *DDC[C]) ColSums(result []float64) {
	g.colSums(g.Counts(core.AllRows(g.numRows)), g.cols, result)
}

func (g *DDC[C]) Min() float64 {
	lo, _ := g.minMax(false)
	return lo
}

func (g *DDC[C]) Max() float64 {
	_, hi := g.minMax(false)
	return hi
}

func (g *DDC[C]) CountNonZerosPerRow(out []int, rr core.RowRange) {
	nnz := g.tupleNonZeros()
	for r := rr.Lo; r < rr.Hi; r++ {
		out[r] += nnz[int(g.codes[r])]
	}
}

func (g *DDC[C]) EstimateInMemorySize() int64 {
	if isWide[C]() {
		return estim.DDC2Size(g.nc, g.numRows, g.NumValues())
	}
	return estim.DDC1Size(g.nc, g.numRows, g.NumValues())
}
