package testutil

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Vector returns n uniform values in [-1, 1).
func (r *RNG) Vector(n int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := make([]float64, n)
	for i := range v {
		v[i] = r.rand.Float64()*2 - 1
	}
	return v
}

// RedundantMatrix returns a rows x cols matrix whose columns each draw
// uniformly from distinct values {0, 1.5, 3, ...}. Zero is one of the values.
func (r *RNG) RedundantMatrix(rows, cols, distinct int) *mat.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(r.rand.Intn(distinct)) * 1.5
	}
	return mat.NewDense(rows, cols, data)
}

// SparseMatrix returns a matrix where each cell is nonzero with probability
// density; nonzero cells draw from distinct values {1, 2, ...}.
func (r *RNG) SparseMatrix(rows, cols int, density float64, distinct int) *mat.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()
	data := make([]float64, rows*cols)
	for i := range data {
		if r.rand.Float64() < density {
			data[i] = float64(r.rand.Intn(distinct) + 1)
		}
	}
	return mat.NewDense(rows, cols, data)
}

// RunMatrix returns a matrix whose columns consist of runs of the same value
// with mean length runLen.
func (r *RNG) RunMatrix(rows, cols, runLen, distinct int) *mat.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := mat.NewDense(rows, cols, nil)
	for c := 0; c < cols; c++ {
		v := 0.0
		for i := 0; i < rows; i++ {
			if r.rand.Intn(runLen) == 0 {
				v = float64(r.rand.Intn(distinct))
			}
			m.Set(i, c, v)
		}
	}
	return m
}

// ZipfMatrix returns a matrix whose columns draw categorical codes from a
// Zipf distribution over n values with exponent s (> 1).
func (r *RNG) ZipfMatrix(rows, cols, n int, s float64) *mat.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()
	z := rand.NewZipf(r.rand, s, 1, uint64(n-1))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(z.Uint64())
	}
	return mat.NewDense(rows, cols, data)
}

// CorrelatedMatrix returns a matrix whose columns are affine functions of a
// shared categorical column, so co-coding them costs no extra tuples.
func (r *RNG) CorrelatedMatrix(rows, cols, distinct int) *mat.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		base := float64(r.rand.Intn(distinct))
		for c := 0; c < cols; c++ {
			m.Set(i, c, base*float64(c+1))
		}
	}
	return m
}

// UniqueMatrix returns a matrix with (almost surely) no repeated values.
func (r *RNG) UniqueMatrix(rows, cols int) *mat.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = r.rand.NormFloat64() + math.Pi
	}
	return mat.NewDense(rows, cols, data)
}

// Dense builds a matrix from rows of equal length.
func Dense(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		m.SetRow(i, row)
	}
	return m
}

// Column builds a single-column matrix.
func Column(values ...float64) *mat.Dense {
	return mat.NewDense(len(values), 1, append([]float64(nil), values...))
}
