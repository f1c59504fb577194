package colgroup

import (
	"math"

	"github.com/hupe1980/cla/internal/simd"
	"github.com/hupe1980/cla/kahan"
)

// dict is a row-major tuple dictionary of width nc.
type dict struct {
	values []float64
	nc     int
}

func (d *dict) NumValues() int {
	if d.nc == 0 {
		return 0
	}
	return len(d.values) / d.nc
}

func (d *dict) Dictionary() []float64 { return d.values }

func (d *dict) tuple(k int) []float64 {
	return d.values[k*d.nc : (k+1)*d.nc]
}

// preaggregate returns, per tuple, its dot product with v restricted to cols.
func (d *dict) preaggregate(v []float64, cols []int) []float64 {
	sub := make([]float64, d.nc)
	simd.Gather(sub, v, cols)
	out := make([]float64, d.NumValues())
	simd.MatVec(d.values, len(out), d.nc, sub, out)
	return out
}

// scatterScaled adds sum_k agg[k]*tuple(k) into result at cols.
func (d *dict) scatterScaled(agg []float64, cols []int, result []float64) {
	acc := make([]float64, d.nc)
	for k, a := range agg {
		if a == 0 {
			continue
		}
		simd.AddScaled(acc, a, d.tuple(k))
	}
	simd.ScatterAdd(result, acc, cols)
}

func (d *dict) tupleSums() []float64 {
	n := d.NumValues()
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		out[k] = kahan.Of(d.tuple(k))
	}
	return out
}

func (d *dict) tupleNonZeros() []int {
	n := d.NumValues()
	out := make([]int, n)
	for k := 0; k < n; k++ {
		for _, v := range d.tuple(k) {
			if v != 0 {
				out[k]++
			}
		}
	}
	return out
}

// sumCounts returns sum_k counts[k] * sum(tuple(k)) with compensation.
func (d *dict) sumCounts(counts []int) float64 {
	var acc kahan.Sum
	for k, c := range counts {
		if c == 0 {
			continue
		}
		for _, v := range d.tuple(k) {
			acc.AddCount(v, c)
		}
	}
	return acc.Value()
}

func (d *dict) colSums(counts []int, cols []int, result []float64) {
	for j, col := range cols {
		var acc kahan.Sum
		for k, c := range counts {
			acc.AddCount(d.values[k*d.nc+j], c)
		}
		result[col] += acc.Value()
	}
}

// minMax scans the dictionary; withZero adds an implicit zero cell.
func (d *dict) minMax(withZero bool) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	if withZero {
		lo, hi = 0, 0
	}
	for _, v := range d.values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

func (d *dict) mapValues(op ScalarOp) dict {
	out := make([]float64, len(d.values))
	for i, v := range d.values {
		out[i] = op(v)
	}
	return dict{values: out, nc: d.nc}
}

func (d *dict) hasZeroTuple() bool {
	n := d.NumValues()
	for k := 0; k < n; k++ {
		if allZero(d.tuple(k)) {
			return true
		}
	}
	return false
}

func allZero(vals []float64) bool {
	for _, v := range vals {
		if v != 0 {
			return false
		}
	}
	return true
}
