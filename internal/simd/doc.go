// Package simd provides the float64 kernels used by the column group compute
// paths and detects the CPU's vector capabilities.
//
// The arithmetic is delegated to gonum's floats package, which carries its own
// assembly for amd64 and arm64. Capability detection decides the row block
// size of the cache-blocked multi-group kernels. Set CLA_SIMD to force an ISA
// (e.g. CLA_SIMD=generic) for benchmarking.
package simd
