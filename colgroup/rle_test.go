package colgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cla/core"
)

func TestRLE_LongRunsAndGaps(t *testing.T) {
	const rows = 200000
	m := mat.NewDense(rows, 1, nil)
	// tuple 1.0: a run longer than one length field, then a gap longer than
	// one gap field before its second run
	for r := 0; r < 70000; r++ {
		m.Set(r, 0, 1)
	}
	for r := 150000; r < 150010; r++ {
		m.Set(r, 0, 1)
	}
	m.Set(80000, 0, 4)

	bm := extract(t, m, 0)
	g, err := NewRLE(bm)
	require.NoError(t, err)

	assert.Equal(t, bm.TotalRuns(), g.NumRuns())
	assert.Equal(t, []int{70010, 1}, g.Counts(core.AllRows(rows)))
	assert.True(t, g.ContainsZeros())

	for _, r := range []int{0, 65534, 65535, 65536, 69999, 70000, 80000, 149999, 150000, 150009, 150010, rows - 1} {
		assert.Equal(t, m.At(r, 0), g.Get(r, 0), "row %d", r)
	}
	assert.Equal(t, []int{10, 0}, g.Counts(core.Rows(140000, 160000)))
	assert.Equal(t, 70010.0+4, g.Sum())
}

func TestRLE_ScalarOpMaterializesZeros(t *testing.T) {
	g, err := NewRLE(extract(t, mat.NewDense(6, 1, []float64{0, 2, 2, 0, 0, 3}), 0))
	require.NoError(t, err)
	require.Equal(t, 2, g.NumValues())

	shifted, ok := g.ScalarOp(Add(1)).(*RLE)
	require.True(t, ok)
	assert.Equal(t, []float64{3, 4, 1}, shifted.Dictionary())
	assert.False(t, shifted.ContainsZeros())
	assert.Equal(t, []int{2, 1, 3}, shifted.Counts(core.AllRows(6)))
	assert.Equal(t, 1.0, shifted.Min())

	scaled, ok := g.ScalarOp(Multiply(3)).(*RLE)
	require.True(t, ok)
	assert.Equal(t, []float64{6, 9}, scaled.Dictionary())
	assert.Same(t, &g.data[0], &scaled.data[0])
	assert.Equal(t, 0.0, scaled.Min())
}

func TestRLE_RangeClipping(t *testing.T) {
	g, err := NewRLE(extract(t, mat.NewDense(8, 1, []float64{5, 5, 5, 0, 5, 5, 7, 7}), 0))
	require.NoError(t, err)

	result := make([]float64, 8)
	g.RightMultByVector([]float64{1}, result, core.Rows(1, 5))
	assert.Equal(t, []float64{0, 5, 5, 0, 5, 0, 0, 0}, result)

	nnz := make([]int, 8)
	g.CountNonZerosPerRow(nnz, core.Rows(2, 8))
	assert.Equal(t, []int{0, 0, 1, 0, 1, 1, 1, 1}, nnz)
}
