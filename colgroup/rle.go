package colgroup

import (
	"slices"

	"github.com/hupe1980/cla/bitmap"
	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/estim"
	"github.com/hupe1980/cla/kahan"
)

// RLE stores, per tuple, the runs of consecutive rows where it occurs.
//
// data[ptr[k]:ptr[k+1]] holds (gap, length) pairs for tuple k, each gap
// measured from the end of the previous run. Rows no run covers are zero.
type RLE struct {
	base
	dict
	ptr        []uint32
	data       []uint16
	numOffsets int
}

// NewRLE builds a run-length group from bm.
func NewRLE(bm *bitmap.Bitmap) (*RLE, error) {
	return newRLE(listsOf(bm)), nil
}

func newRLE(l offsetLists) *RLE {
	nv := len(l.offsets)
	ptr := make([]uint32, nv+1)
	var data []uint16
	for k, offs := range l.offsets {
		ptr[k] = uint32(len(data))
		data = bitmap.AppendRunPairs(data, offs)
	}
	ptr[nv] = uint32(len(data))

	g := &RLE{
		base:       base{cols: slices.Clone(l.cols), numRows: l.numRows},
		dict:       dict{values: slices.Clone(l.values), nc: len(l.cols)},
		ptr:        ptr,
		data:       data,
		numOffsets: l.total(),
	}
	g.zeros = g.numOffsets < g.numRows || g.hasZeroTuple()
	return g
}

func (g *RLE) Scheme() core.Scheme { return core.SchemeRLE }

// NumRuns returns the number of stored (gap, length) pairs.
func (g *RLE) NumRuns() int { return len(g.data) / 2 }

// runsIn calls fn with every run of tuple k clipped to rr.
func (g *RLE) runsIn(k int, rr core.RowRange, fn func(start, end int)) {
	d := g.data[g.ptr[k]:g.ptr[k+1]]
	pos := 0
	for i := 0; i+1 < len(d); i += 2 {
		start := pos + int(d[i])
		end := start + int(d[i+1])
		pos = end
		if start >= rr.Hi {
			return
		}
		if end <= rr.Lo || start == end {
			continue
		}
		fn(max(start, rr.Lo), min(end, rr.Hi))
	}
}

func (g *RLE) all() core.RowRange { return core.AllRows(g.numRows) }

func (g *RLE) lists() offsetLists {
	offsets := make([][]uint32, g.NumValues())
	for k := range offsets {
		g.runsIn(k, g.all(), func(start, end int) {
			for r := start; r < end; r++ {
				offsets[k] = append(offsets[k], uint32(r))
			}
		})
	}
	return offsetLists{cols: g.cols, numRows: g.numRows, values: g.values, offsets: offsets}
}

func (g *RLE) Get(row, col int) float64 {
	rr := core.Rows(row, row+1)
	for k := 0; k < g.NumValues(); k++ {
		found := false
		g.runsIn(k, rr, func(int, int) { found = true })
		if found {
			return g.values[k*g.nc+col]
		}
	}
	return 0
}

func (g *RLE) DecompressInto(target core.MutableMatrix, rr core.RowRange) {
	zeroRows(target, g.cols, rr)
	for k := 0; k < g.NumValues(); k++ {
		t := g.tuple(k)
		g.runsIn(k, rr, func(start, end int) {
			for r := start; r < end; r++ {
				for j, col := range g.cols {
					target.Set(r, col, t[j])
				}
			}
		})
	}
}

// ScalarOp maps the dictionary. When op does not preserve zero, the
// uncovered rows become an explicit tuple and the runs are re-encoded.
func (g *RLE) ScalarOp(op ScalarOp) ColGroup {
	if op.sparseSafe() || g.numOffsets == g.numRows {
		out := &RLE{
			base:       base{cols: g.cols, numRows: g.numRows},
			dict:       g.mapValues(op),
			ptr:        g.ptr,
			data:       g.data,
			numOffsets: g.numOffsets,
		}
		out.zeros = out.numOffsets < out.numRows || out.hasZeroTuple()
		return out
	}
	l := g.lists()
	l.values = g.mapValues(op).values
	return newRLE(l.fillUncovered(op(0)))
}

func (g *RLE) RightMultByVector(v, result []float64, rr core.RowRange) {
	pre := g.preaggregate(v, g.cols)
	for k, p := range pre {
		if p == 0 {
			continue
		}
		g.runsIn(k, rr, func(start, end int) {
			out := result[start:end]
			for i := range out {
				out[i] += p
			}
		})
	}
}

func (g *RLE) LeftMultByRowVector(v, result []float64) {
	agg := make([]float64, g.NumValues())
	for k := range agg {
		g.runsIn(k, g.all(), func(start, end int) {
			for _, x := range v[start:end] {
				agg[k] += x
			}
		})
	}
	g.scatterScaled(agg, g.cols, result)
}

func (g *RLE) Counts(rr core.RowRange) []int {
	counts := make([]int, g.NumValues())
	for k := range counts {
		g.runsIn(k, rr, func(start, end int) {
			counts[k] += end - start
		})
	}
	return counts
}

func (g *RLE) Sum() float64 {
	return g.sumCounts(g.Counts(g.all()))
}

func (g *RLE) RowSums(acc []kahan.Sum, rr core.RowRange) {
	for k, s := range g.tupleSums() {
		g.runsIn(k, rr, func(start, end int) {
			for r := start; r < end; r++ {
				acc[r].Add(s)
			}
		})
	}
}

func (g *RLE) ColSums(result []float64) {
	g.colSums(g.Counts(g.all()), g.cols, result)
}

func (g *RLE) Min() float64 {
	lo, _ := g.minMax(g.numOffsets < g.numRows)
	return lo
}

func (g *RLE) Max() float64 {
	_, hi := g.minMax(g.numOffsets < g.numRows)
	return hi
}

func (g *RLE) CountNonZerosPerRow(out []int, rr core.RowRange) {
	for k, n := range g.tupleNonZeros() {
		if n == 0 {
			continue
		}
		g.runsIn(k, rr, func(start, end int) {
			for r := start; r < end; r++ {
				out[r] += n
			}
		})
	}
}

func (g *RLE) EstimateInMemorySize() int64 {
	return estim.RLESize(g.nc, g.NumValues(), g.NumRuns())
}

// zeroRows clears the cells of cols in rr.
func zeroRows(target core.MutableMatrix, cols []int, rr core.RowRange) {
	for r := rr.Lo; r < rr.Hi; r++ {
		for _, col := range cols {
			target.Set(r, col, 0)
		}
	}
}
