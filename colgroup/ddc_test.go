package colgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cla/bitmap"
	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/testutil"
)

func extract(t *testing.T, m core.Matrix, cols ...int) *bitmap.Bitmap {
	t.Helper()
	bm, err := bitmap.Extract(cols, m)
	require.NoError(t, err)
	return bm
}

func TestDDC1_SingleColumnKernels(t *testing.T) {
	g, err := NewDDC1(extract(t, testutil.Column(1, 2, 1, 2, 1), 0))
	require.NoError(t, err)

	assert.Equal(t, core.SchemeDDC1, g.Scheme())
	assert.Equal(t, []float64{1, 2}, g.Dictionary())
	assert.Equal(t, []uint8{0, 1, 0, 1, 0}, g.Codes())
	assert.False(t, g.ContainsZeros())

	result := make([]float64, 5)
	g.RightMultByVector([]float64{3}, result, core.AllRows(5))
	assert.Equal(t, []float64{3, 6, 3, 6, 3}, result)

	assert.Equal(t, 7.0, g.Sum())
	assert.Equal(t, []int{3, 2}, g.Counts(core.AllRows(5)))
	assert.Equal(t, []int{1, 1}, g.Counts(core.Rows(1, 3)))
	assert.Equal(t, 1.0, g.Min())
	assert.Equal(t, 2.0, g.Max())
}

func TestDDC1_ScalarOpKeepsCodes(t *testing.T) {
	g, err := NewDDC1(extract(t, testutil.Column(1, 2, 1, 2, 1), 0))
	require.NoError(t, err)

	doubled, ok := g.ScalarOp(Multiply(2)).(*DDC1)
	require.True(t, ok)

	assert.Equal(t, []float64{2, 4}, doubled.Dictionary())
	assert.Equal(t, []uint8{0, 1, 0, 1, 0}, doubled.Codes())
	assert.Same(t, &g.Codes()[0], &doubled.Codes()[0])
	// source untouched
	assert.Equal(t, []float64{1, 2}, g.Dictionary())
}

func TestDDC_SynthesizesZeroTuple(t *testing.T) {
	g, err := NewDDC1(extract(t, testutil.Column(0, 3, 0, 3, 5), 0))
	require.NoError(t, err)

	assert.Equal(t, []float64{3, 5, 0}, g.Dictionary())
	assert.Equal(t, []uint8{2, 0, 2, 0, 1}, g.Codes())
	assert.True(t, g.ContainsZeros())
	assert.Equal(t, 0.0, g.Min())
	assert.Equal(t, []int{2, 1, 2}, g.Counts(core.AllRows(5)))
}

func TestDDC_MultiColumnZeroTupleCountsRows(t *testing.T) {
	m := testutil.Dense([][]float64{{1, 2}, {0, 5}, {1, 2}})
	g, err := NewDDC1(extract(t, m, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 0, 5}, g.Dictionary())
	assert.Equal(t, []uint8{0, 1, 0}, g.Codes())
	assert.False(t, g.ContainsZeros())

	m = testutil.Dense([][]float64{{1, 2}, {0, 0}, {1, 2}})
	g, err = NewDDC1(extract(t, m, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 0, 0}, g.Dictionary())
	assert.Equal(t, []uint8{0, 1, 0}, g.Codes())
	assert.True(t, g.ContainsZeros())
}

func TestDDC_ExplicitZeroTupleIsNotDuplicated(t *testing.T) {
	bm, err := bitmap.ExtractWithConfig([]int{0}, testutil.Column(0, 3, 0, 3, 5),
		bitmap.Config{Zero: bitmap.ZeroExplicit})
	require.NoError(t, err)

	g, err := NewDDC1(bm)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 3, 5}, g.Dictionary())
	assert.Equal(t, []uint8{0, 1, 0, 1, 2}, g.Codes())
	assert.True(t, g.ContainsZeros())
}

func TestDDC_ReusesStoredZeroTupleForUncoveredRows(t *testing.T) {
	bm, err := bitmap.New([]int{0}, 4, []float64{7, 0}, [][]uint32{{1}, {3}}, bitmap.ZeroImplicit)
	require.NoError(t, err)

	g, err := NewDDC2(bm)
	require.NoError(t, err)

	assert.Equal(t, core.SchemeDDC2, g.Scheme())
	assert.Equal(t, []float64{7, 0}, g.Dictionary())
	assert.Equal(t, []uint16{1, 0, 1, 1}, g.Codes())
}

func TestDDC1_CapacityExceeded(t *testing.T) {
	values := make([]float64, 300)
	for i := range values {
		values[i] = float64(i + 1)
	}
	bm := extract(t, testutil.Column(values...), 0)

	_, err := NewDDC1(bm)
	require.ErrorIs(t, err, core.ErrInvariant)

	var ie *core.InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, []int{0}, ie.Columns)

	g, err := NewDDC2(bm)
	require.NoError(t, err)
	assert.Equal(t, 300, g.NumValues())
}

func TestDDC1_CapacityCountsZeroTuple(t *testing.T) {
	values := make([]float64, 256)
	for i := 1; i < len(values); i++ {
		values[i] = float64(i)
	}
	// 255 stored tuples plus the synthesized zero tuple
	_, err := NewDDC1(extract(t, testutil.Column(values...), 0))
	require.ErrorIs(t, err, core.ErrInvariant)
}

func TestDDC_MultiColumnLeftMult(t *testing.T) {
	m := testutil.Dense([][]float64{
		{1, 0, 2},
		{3, 0, 4},
		{1, 0, 2},
	})
	g, err := NewDDC1(extract(t, m, 0, 2))
	require.NoError(t, err)

	result := make([]float64, 3)
	g.LeftMultByRowVector([]float64{1, 10, 100}, result)
	assert.Equal(t, []float64{1 + 30 + 100, 0, 2 + 40 + 200}, result)

	nnz := make([]int, 3)
	g.CountNonZerosPerRow(nnz, core.AllRows(3))
	assert.Equal(t, []int{2, 2, 2}, nnz)
}

// testutil5 is the column [1, 2, 1, 2, 1].
func testutil5() core.Matrix {
	return testutil.Column(1, 2, 1, 2, 1)
}
