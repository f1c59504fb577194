// Package testutil provides testing utilities for cla.
//
// This package is intended for use in tests and benchmarks only.
// It generates deterministic matrices with the redundancy patterns column
// compression is built for: few distinct values per column, long runs,
// sparse columns, skewed (Zipf) value frequencies and correlated columns.
//
//	rng := testutil.NewRNG(4711)
//	m := rng.RedundantMatrix(10_000, 8, 5)   // 5 distinct values per column
//	s := rng.SparseMatrix(10_000, 8, 0.05, 3) // 5% nonzero
package testutil
