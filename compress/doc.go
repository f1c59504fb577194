// Package compress decides how candidate column sets are encoded.
//
// For each candidate set the Compressor extracts a bitmap, estimates the
// size of every scheme and compares the cheapest one against the
// uncompressed baseline. Unfavorable sets shrink one column at a time,
// dropping the column whose standalone compression ratio is worst, until the
// set compresses or becomes empty. The bitmap used for the final estimate is
// reused to build the group, so the matrix is scanned once per attempt.
//
// CompressGroups runs one such decision per candidate set on a bounded
// worker pool. Results keep the candidate order and the first failure
// cancels the batch.
package compress
