package colgroup

import (
	"slices"

	"github.com/hupe1980/cla/bitmap"
	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/estim"
	"github.com/hupe1980/cla/kahan"
)

const segmentSize = estim.OLESegmentSize

// OLE stores, per tuple, the row offsets where it occurs, split into
// segments of segmentSize rows.
//
// data[ptr[k]:ptr[k+1]] holds, for each segment, a count followed by that
// many offsets relative to the segment start. With more than one segment,
// skip[k*segs+s] is the data position of segment s of tuple k.
type OLE struct {
	base
	dict
	ptr        []uint32
	data       []uint16
	skip       []uint32
	numOffsets int
}

// NewOLE builds an offset-list group from bm.
func NewOLE(bm *bitmap.Bitmap) (*OLE, error) {
	return newOLE(listsOf(bm)), nil
}

func newOLE(l offsetLists) *OLE {
	nv := len(l.offsets)
	segs := estim.NumSegments(l.numRows)
	total := l.total()

	ptr := make([]uint32, nv+1)
	data := make([]uint16, 0, total+nv*segs)
	var skip []uint32
	if segs > 1 {
		skip = make([]uint32, nv*segs)
	}
	for k, offs := range l.offsets {
		ptr[k] = uint32(len(data))
		i := 0
		for s := 0; s < segs; s++ {
			if skip != nil {
				skip[k*segs+s] = uint32(len(data))
			}
			lo, hi := s*segmentSize, (s+1)*segmentSize
			j := i
			for j < len(offs) && int(offs[j]) < hi {
				j++
			}
			data = append(data, uint16(j-i))
			for _, r := range offs[i:j] {
				data = append(data, uint16(int(r)-lo))
			}
			i = j
		}
	}
	ptr[nv] = uint32(len(data))

	g := &OLE{
		base:       base{cols: slices.Clone(l.cols), numRows: l.numRows},
		dict:       dict{values: slices.Clone(l.values), nc: len(l.cols)},
		ptr:        ptr,
		data:       data,
		skip:       skip,
		numOffsets: total,
	}
	g.zeros = g.numOffsets < g.numRows || g.hasZeroTuple()
	return g
}

func (g *OLE) Scheme() core.Scheme { return core.SchemeOLE }

// NumOffsets returns the number of stored row offsets.
func (g *OLE) NumOffsets() int { return g.numOffsets }

func (g *OLE) numSegments() int { return estim.NumSegments(g.numRows) }

// offsetsIn calls fn for every row of tuple k inside rr, in ascending order.
func (g *OLE) offsetsIn(k int, rr core.RowRange, fn func(r int)) {
	if rr.Len() == 0 {
		return
	}
	segs := g.numSegments()
	first, pos := 0, int(g.ptr[k])
	if g.skip != nil {
		first = rr.Lo / segmentSize
		pos = int(g.skip[k*segs+first])
	}
	for s := first; s < segs && s*segmentSize < rr.Hi; s++ {
		n := int(g.data[pos])
		start := s * segmentSize
		for _, off := range g.data[pos+1 : pos+1+n] {
			r := start + int(off)
			if r < rr.Lo {
				continue
			}
			if r >= rr.Hi {
				return
			}
			fn(r)
		}
		pos += 1 + n
	}
}

func (g *OLE) all() core.RowRange { return core.AllRows(g.numRows) }

func (g *OLE) lists() offsetLists {
	offsets := make([][]uint32, g.NumValues())
	for k := range offsets {
		g.offsetsIn(k, g.all(), func(r int) {
			offsets[k] = append(offsets[k], uint32(r))
		})
	}
	return offsetLists{cols: g.cols, numRows: g.numRows, values: g.values, offsets: offsets}
}

func (g *OLE) Get(row, col int) float64 {
	rr := core.Rows(row, row+1)
	for k := 0; k < g.NumValues(); k++ {
		found := false
		g.offsetsIn(k, rr, func(int) { found = true })
		if found {
			return g.values[k*g.nc+col]
		}
	}
	return 0
}

func (g *OLE) DecompressInto(target core.MutableMatrix, rr core.RowRange) {
	zeroRows(target, g.cols, rr)
	for k := 0; k < g.NumValues(); k++ {
		t := g.tuple(k)
		g.offsetsIn(k, rr, func(r int) {
			for j, col := range g.cols {
				target.Set(r, col, t[j])
			}
		})
	}
}

// ScalarOp maps the dictionary. When op does not preserve zero, the
// uncovered rows become an explicit tuple and the offsets are re-encoded.
func (g *OLE) ScalarOp(op ScalarOp) ColGroup {
	if op.sparseSafe() || g.numOffsets == g.numRows {
		out := &OLE{
			base:       base{cols: g.cols, numRows: g.numRows},
			dict:       g.mapValues(op),
			ptr:        g.ptr,
			data:       g.data,
			skip:       g.skip,
			numOffsets: g.numOffsets,
		}
		out.zeros = out.numOffsets < out.numRows || out.hasZeroTuple()
		return out
	}
	l := g.lists()
	l.values = g.mapValues(op).values
	return newOLE(l.fillUncovered(op(0)))
}

func (g *OLE) RightMultByVector(v, result []float64, rr core.RowRange) {
	pre := g.preaggregate(v, g.cols)
	for k, p := range pre {
		if p == 0 {
			continue
		}
		g.offsetsIn(k, rr, func(r int) { result[r] += p })
	}
}

func (g *OLE) LeftMultByRowVector(v, result []float64) {
	agg := make([]float64, g.NumValues())
	for k := range agg {
		g.offsetsIn(k, g.all(), func(r int) { agg[k] += v[r] })
	}
	g.scatterScaled(agg, g.cols, result)
}

func (g *OLE) Counts(rr core.RowRange) []int {
	counts := make([]int, g.NumValues())
	for k := range counts {
		g.offsetsIn(k, rr, func(int) { counts[k]++ })
	}
	return counts
}

func (g *OLE) Sum() float64 {
	return g.sumCounts(g.Counts(g.all()))
}

func (g *OLE) RowSums(acc []kahan.Sum, rr core.RowRange) {
	for k, s := range g.tupleSums() {
		g.offsetsIn(k, rr, func(r int) { acc[r].Add(s) })
	}
}

func (g *OLE) ColSums(result []float64) {
	g.colSums(g.Counts(g.all()), g.cols, result)
}

func (g *OLE) Min() float64 {
	lo, _ := g.minMax(g.numOffsets < g.numRows)
	return lo
}

func (g *OLE) Max() float64 {
	_, hi := g.minMax(g.numOffsets < g.numRows)
	return hi
}

func (g *OLE) CountNonZerosPerRow(out []int, rr core.RowRange) {
	for k, n := range g.tupleNonZeros() {
		if n == 0 {
			continue
		}
		g.offsetsIn(k, rr, func(r int) { out[r] += n })
	}
}

func (g *OLE) EstimateInMemorySize() int64 {
	return estim.OLESize(g.nc, g.numRows, g.NumValues(), g.numOffsets)
}
