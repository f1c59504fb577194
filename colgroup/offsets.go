package colgroup

import "github.com/hupe1980/cla/bitmap"

// offsetLists is the intermediate form RLE and OLE groups are encoded from.
type offsetLists struct {
	cols    []int
	numRows int
	values  []float64
	offsets [][]uint32
}

func listsOf(bm *bitmap.Bitmap) offsetLists {
	offsets := make([][]uint32, bm.NumValues())
	for k := range offsets {
		offsets[k] = bm.Offsets(k)
	}
	return offsetLists{
		cols:    bm.Columns(),
		numRows: bm.NumRows(),
		values:  bm.AllValues(),
		offsets: offsets,
	}
}

func (l offsetLists) total() int {
	n := 0
	for _, o := range l.offsets {
		n += len(o)
	}
	return n
}

// fillUncovered appends a tuple with every cell set to v covering the rows
// no other tuple covers. It is a no-op when every row is covered.
func (l offsetLists) fillUncovered(v float64) offsetLists {
	if l.total() == l.numRows {
		return l
	}
	tuple := make([]float64, len(l.cols))
	for j := range tuple {
		tuple[j] = v
	}
	l.values = append(l.values[:len(l.values):len(l.values)], tuple...)
	l.offsets = append(l.offsets[:len(l.offsets):len(l.offsets)], bitmap.Uncovered(l.numRows, l.offsets).ToArray())
	return l
}
