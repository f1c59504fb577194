package colgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/internal/simd"
	"github.com/hupe1980/cla/testutil"
)

func TestRightMultByVectorBatch_MatchesPerGroup(t *testing.T) {
	rng := testutil.NewRNG(99)
	rows := 3*simd.RowBlockSize() + 17
	m := rng.RedundantMatrix(rows, 6, 5)

	schemes := []core.Scheme{core.SchemeDDC1, core.SchemeDDC2, core.SchemeRLE, core.SchemeUncompressed}
	var groups []ColGroup
	for i, cols := range [][]int{{0, 1}, {2}, {3, 4}, {5}} {
		g, err := Build(extract(t, m, cols...), schemes[i])
		require.NoError(t, err)
		groups = append(groups, g)
	}

	v := rng.Vector(6)
	for _, rr := range []core.RowRange{core.AllRows(rows), core.Rows(5, rows-3)} {
		want := make([]float64, rows)
		for _, g := range groups {
			g.RightMultByVector(v, want, rr)
		}
		got := make([]float64, rows)
		RightMultByVectorBatch(groups, v, got, rr)

		for r := range want {
			assert.InDelta(t, want[r], got[r], tol, "row %d", r)
		}
	}
}

func TestRightMultByVectorBatch_Empty(t *testing.T) {
	result := []float64{1, 2}
	RightMultByVectorBatch(nil, nil, result, core.AllRows(2))
	assert.Equal(t, []float64{1, 2}, result)
}
