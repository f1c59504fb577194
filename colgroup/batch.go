package colgroup

import (
	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/internal/simd"
)

// rowAdder is implemented by groups whose right multiply splits into a
// per-tuple pre-aggregation and a per-row scatter.
type rowAdder interface {
	rowPreaggregate(v []float64) []float64
	addRows(pre, result []float64, lo, hi int)
}

var (
	_ rowAdder = (*DDC1)(nil)
	_ rowAdder = (*DDC2)(nil)
)

// RightMultByVectorBatch adds G*v for every group into result over rr.
//
// DDC groups are processed together in row blocks of simd.RowBlockSize()
// rows so that result stays in cache across groups. Other groups run their
// own kernel over the whole range.
func RightMultByVectorBatch(groups []ColGroup, v, result []float64, rr core.RowRange) {
	adders := make([]rowAdder, 0, len(groups))
	pres := make([][]float64, 0, len(groups))
	for _, g := range groups {
		if a, ok := g.(rowAdder); ok {
			adders = append(adders, a)
			pres = append(pres, a.rowPreaggregate(v))
			continue
		}
		g.RightMultByVector(v, result, rr)
	}
	if len(adders) == 0 {
		return
	}
	bs := simd.RowBlockSize()
	for lo := rr.Lo; lo < rr.Hi; lo += bs {
		hi := min(lo+bs, rr.Hi)
		for i, a := range adders {
			a.addRows(pres[i], result, lo, hi)
		}
	}
}
