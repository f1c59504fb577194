package colgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/estim"
)

func multiSegmentMatrix() *mat.Dense {
	const rows = 3*estim.OLESegmentSize + 123
	m := mat.NewDense(rows, 2, nil)
	for r := 0; r < rows; r++ {
		switch {
		case r%1000 == 0:
			m.Set(r, 0, 2)
		case r%777 == 1:
			m.Set(r, 0, 3)
			m.Set(r, 1, 1)
		}
	}
	return m
}

func TestOLE_MultiSegment(t *testing.T) {
	m := multiSegmentMatrix()
	rows, _ := m.Dims()
	bm := extract(t, m, 0, 1)

	g, err := NewOLE(bm)
	require.NoError(t, err)
	require.Equal(t, 4, g.numSegments())
	require.Len(t, g.skip, g.NumValues()*4)
	assert.Equal(t, bm.TotalOffsets(), g.NumOffsets())

	for _, rr := range []core.RowRange{
		core.AllRows(rows),
		core.Rows(140000, 150000),
		core.Rows(estim.OLESegmentSize-5, estim.OLESegmentSize+5),
		core.Rows(rows-10, rows),
	} {
		want := make([]int, g.NumValues())
		for r := rr.Lo; r < rr.Hi; r++ {
			switch {
			case r%1000 == 0:
				want[0]++
			case r%777 == 1:
				want[1]++
			}
		}
		assert.Equal(t, want, g.Counts(rr), rr.String())

		result := make([]float64, rows)
		g.RightMultByVector([]float64{1, 10}, result, rr)
		for r := 0; r < rows; r++ {
			exp := 0.0
			if r >= rr.Lo && r < rr.Hi {
				exp = m.At(r, 0) + 10*m.At(r, 1)
			}
			require.Equal(t, exp, result[r], "row %d in %s", r, rr)
		}
	}
}

func TestOLE_SingleSegmentHasNoSkipIndex(t *testing.T) {
	g, err := NewOLE(extract(t, mat.NewDense(5, 1, []float64{0, 1, 0, 1, 2}), 0))
	require.NoError(t, err)
	assert.Nil(t, g.skip)
	assert.Equal(t, []uint16{2, 1, 3, 1, 4}, g.data)
	assert.Equal(t, []uint32{0, 3, 5}, g.ptr)
}

func TestOLE_FullSegment(t *testing.T) {
	const rows = estim.OLESegmentSize + 10
	data := make([]float64, rows)
	for i := range data {
		data[i] = 1
	}
	g, err := NewOLE(extract(t, mat.NewDense(rows, 1, data), 0))
	require.NoError(t, err)

	assert.Equal(t, float64(rows), g.Sum())
	assert.False(t, g.ContainsZeros())
	assert.Equal(t, []int{rows}, g.Counts(core.AllRows(rows)))
}

func TestOLE_ScalarOpMaterializesZeros(t *testing.T) {
	m := multiSegmentMatrix()
	rows, _ := m.Dims()
	g, err := NewOLE(extract(t, m, 0, 1))
	require.NoError(t, err)

	out := g.ScalarOp(Add(-1))
	require.Equal(t, core.SchemeOLE, out.Scheme())
	assert.Equal(t, g.NumValues()+1, out.NumValues())
	for _, r := range []int{0, 1, 2, 1000, 778, rows - 1} {
		assert.Equal(t, m.At(r, 0)-1, out.Get(r, 0), "row %d", r)
		assert.Equal(t, m.At(r, 1)-1, out.Get(r, 1), "row %d", r)
	}
}
