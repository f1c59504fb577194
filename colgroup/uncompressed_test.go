package colgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/testutil"
)

func TestNewUncompressed(t *testing.T) {
	m := testutil.Dense([][]float64{
		{1, 2, 3},
		{0, 5, 0},
	})
	g, err := NewUncompressed([]int{0, 2}, m)
	require.NoError(t, err)

	assert.Equal(t, core.SchemeUncompressed, g.Scheme())
	assert.Equal(t, []float64{1, 3, 0, 0}, g.Values())
	assert.True(t, g.ContainsZeros())
	assert.Zero(t, g.NumValues())
	assert.Nil(t, g.Dictionary())
	assert.Equal(t, 4.0, g.Sum())
}

func TestNewUncompressed_Errors(t *testing.T) {
	m := testutil.Column(1, 2)

	_, err := NewUncompressed(nil, m)
	require.ErrorIs(t, err, core.ErrEmptyColumns)

	_, err = NewUncompressed([]int{1}, m)
	require.ErrorIs(t, err, core.ErrOutOfRange)
}

func TestBuild_UnknownScheme(t *testing.T) {
	_, err := Build(extract(t, testutil5(), 0), core.Scheme(9))
	require.ErrorIs(t, err, core.ErrUnsupported)
}
