// Package estim models the in-memory footprint of every column group scheme
// and estimates, from a bitmap, which scheme is smallest.
//
// The size model is a set of closed-form functions of column count, row
// count, distinct tuple count and occurrence/run counts. Object and slice
// overheads follow Go's 64-bit layout and are named constants; the absolute
// numbers matter less than their being applied consistently, because the
// compressor only compares schemes against each other and against the
// uncompressed baseline.
package estim
