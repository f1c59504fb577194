package bitmap

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/testutil"
)

func TestExtract_SingleColumn(t *testing.T) {
	m := testutil.Column(1, 2, 1, 2, 1)

	bm, err := Extract([]int{0}, m)
	require.NoError(t, err)

	assert.Equal(t, 1, bm.NumCols())
	assert.Equal(t, 5, bm.NumRows())
	require.Equal(t, 2, bm.NumValues())
	assert.Equal(t, []float64{1}, bm.Values(0))
	assert.Equal(t, []float64{2}, bm.Values(1))
	assert.Equal(t, []uint32{0, 2, 4}, bm.Offsets(0))
	assert.Equal(t, []uint32{1, 3}, bm.Offsets(1))
	assert.Equal(t, 5, bm.TotalOffsets())
	assert.False(t, bm.ContainsZeros())
	require.NoError(t, bm.Validate())
}

func TestExtract_ImplicitZeros(t *testing.T) {
	m := testutil.Dense([][]float64{
		{0, 0},
		{1, 0},
		{0, 0},
		{0, 2},
		{1, 0},
	})

	bm, err := Extract([]int{0, 1}, m)
	require.NoError(t, err)

	require.Equal(t, 2, bm.NumValues())
	assert.Equal(t, []float64{1, 0}, bm.Values(0))
	assert.Equal(t, []float64{0, 2}, bm.Values(1))
	assert.Equal(t, 2, bm.NumZeroRows())
	assert.True(t, bm.ContainsZeros())
	assert.Equal(t, -1, bm.ZeroTupleIndex())
	assert.Equal(t, []uint32{0, 2}, bm.ZeroRows().ToArray())
	assert.Equal(t, int64(3), bm.NonZeroCells())
	assert.InDelta(t, 0.3, bm.Sparsity(), 1e-12)
}

func TestExtract_ExplicitZeros(t *testing.T) {
	m := testutil.Column(0, 3, 0, 3)

	bm, err := ExtractWithConfig([]int{0}, m, Config{Zero: ZeroExplicit})
	require.NoError(t, err)

	require.Equal(t, 2, bm.NumValues())
	assert.Equal(t, 0, bm.ZeroTupleIndex())
	assert.Equal(t, 0, bm.NumZeroRows())
	assert.True(t, bm.ContainsZeros())
	assert.True(t, bm.ZeroRows().IsEmpty())
	require.NoError(t, bm.Validate())
}

func TestExtract_NegativeZero(t *testing.T) {
	m := testutil.Column(math.Copysign(0, -1), 4, 0)
	bm, err := ExtractWithConfig([]int{0}, m, Config{Zero: ZeroExplicit})
	require.NoError(t, err)
	// -0 and +0 share one tuple.
	assert.Equal(t, 2, bm.NumValues())
}

func TestExtract_Errors(t *testing.T) {
	m := testutil.Dense([][]float64{{1, 2}})

	_, err := Extract(nil, m)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = Extract([]int{2}, m)
	require.Error(t, err)
	var cie *core.ColumnIndexError
	assert.True(t, errors.As(err, &cie))
	assert.ErrorIs(t, err, core.ErrOutOfRange)
	assert.False(t, errors.Is(err, core.ErrInvariant))
}

// Every row is held by exactly one tuple or is an implicit zero row.
func TestExtract_PartitionProperty(t *testing.T) {
	rng := testutil.NewRNG(4711)
	for _, m := range []core.Matrix{
		rng.RedundantMatrix(2000, 4, 3),
		rng.SparseMatrix(2000, 4, 0.05, 4),
		rng.RunMatrix(2000, 4, 50, 3),
	} {
		bm, err := Extract([]int{0, 2, 3}, m)
		require.NoError(t, err)
		require.NoError(t, bm.Validate())

		zero := bm.ZeroRows()
		assert.Equal(t, uint64(bm.NumZeroRows()), zero.GetCardinality())

		counts := make([]int, bm.NumRows())
		for k := range bm.NumValues() {
			for _, r := range bm.Offsets(k) {
				counts[r]++
				for j, c := range bm.Columns() {
					assert.Equal(t, m.At(int(r), c), bm.Values(k)[j])
				}
			}
		}
		it := zero.Iterator()
		for it.HasNext() {
			counts[it.Next()]++
		}
		for r, n := range counts {
			assert.Equal(t, 1, n, "row %d", r)
		}
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]int{0}, 4, []float64{1, 2}, [][]uint32{{0, 1}, {1}}, ZeroImplicit)
	assert.ErrorIs(t, err, core.ErrInvariant)

	_, err = New([]int{0}, 4, []float64{1}, [][]uint32{{2, 1}}, ZeroImplicit)
	assert.ErrorIs(t, err, core.ErrInvariant)

	_, err = New([]int{0}, 4, []float64{1}, [][]uint32{{4}}, ZeroImplicit)
	assert.ErrorIs(t, err, core.ErrInvariant)

	_, err = New([]int{0}, 4, []float64{1, 2}, [][]uint32{{0}}, ZeroImplicit)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = New([]int{0}, 2, []float64{1}, [][]uint32{{0}}, ZeroExplicit)
	assert.ErrorIs(t, err, core.ErrInvariant)

	bm, err := New([]int{3}, 4, []float64{7}, [][]uint32{{1, 2}}, ZeroImplicit)
	require.NoError(t, err)
	assert.Equal(t, 2, bm.NumZeroRows())
}

func TestDeterministicExtraction(t *testing.T) {
	m := testutil.NewRNG(1).ZipfMatrix(500, 3, 20, 1.3)
	a, err := Extract([]int{0, 1, 2}, m)
	require.NoError(t, err)
	b, err := Extract([]int{0, 1, 2}, m)
	require.NoError(t, err)
	assert.Equal(t, a.AllValues(), b.AllValues())
	for k := range a.NumValues() {
		assert.Equal(t, a.Offsets(k), b.Offsets(k))
	}
}

func TestUncovered(t *testing.T) {
	got := Uncovered(6, [][]uint32{{0, 3}, {1}, {}})
	assert.Equal(t, []uint32{2, 4, 5}, got.ToArray())
	assert.True(t, Uncovered(2, [][]uint32{{0, 1}}).IsEmpty())
	assert.Equal(t, []uint32{0, 1, 2}, Uncovered(3, nil).ToArray())
}
