package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedundantMatrix(t *testing.T) {
	rng := NewRNG(4711)
	m := rng.RedundantMatrix(100, 3, 4)

	r, c := m.Dims()
	assert.Equal(t, 100, r)
	assert.Equal(t, 3, c)

	seen := map[float64]bool{}
	for i := 0; i < r; i++ {
		seen[m.At(i, 0)] = true
	}
	assert.LessOrEqual(t, len(seen), 4)
}

func TestSparseMatrix(t *testing.T) {
	rng := NewRNG(4711)
	m := rng.SparseMatrix(1000, 2, 0.1, 3)

	nnz := 0
	for i := 0; i < 1000; i++ {
		for j := 0; j < 2; j++ {
			if m.At(i, j) != 0 {
				nnz++
			}
		}
	}
	assert.InDelta(t, 200, nnz, 60)
}

func TestDeterminism(t *testing.T) {
	a := NewRNG(7).ZipfMatrix(50, 2, 10, 1.5)
	b := NewRNG(7).ZipfMatrix(50, 2, 10, 1.5)
	assert.Equal(t, a.RawMatrix().Data, b.RawMatrix().Data)

	rng := NewRNG(7)
	first := rng.Intn(1 << 30)
	rng.Reset()
	assert.Equal(t, first, rng.Intn(1<<30))
	assert.Equal(t, int64(7), rng.Seed())
}

func TestCorrelatedMatrix(t *testing.T) {
	m := NewRNG(1).CorrelatedMatrix(20, 3, 4)
	for i := 0; i < 20; i++ {
		assert.Equal(t, 2*m.At(i, 0), m.At(i, 1))
		assert.Equal(t, 3*m.At(i, 0), m.At(i, 2))
	}
}

func TestDenseAndColumn(t *testing.T) {
	m := Dense([][]float64{{1, 2}, {3, 4}})
	assert.Equal(t, 3.0, m.At(1, 0))

	c := Column(1, 2, 1)
	r, cols := c.Dims()
	require.Equal(t, 3, r)
	assert.Equal(t, 1, cols)
}
