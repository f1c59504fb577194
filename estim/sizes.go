package estim

import "math"

// Layout constants for a 64-bit Go runtime.
const (
	// SliceHeaderSize is unsafe.Sizeof([]T{}).
	SliceHeaderSize = 24
	// GroupHeaderSize is the fixed part of a column group value: the
	// column-index and dictionary slice headers plus row count and flags.
	GroupHeaderSize = 64
	// IntSize is the size of a Go int (column indexes).
	IntSize = 8
	// Float64Size is the size of a dictionary entry.
	Float64Size = 8
	// Uint32Size is the size of a pointer-array entry.
	Uint32Size = 4
	// Uint16Size is the size of an offset or run field.
	Uint16Size = 2
)

// OLESegmentSize is the number of rows covered by one offset-list segment.
// Offsets inside a segment are stored relative to its start as uint16, and a
// segment's occurrence count must fit a uint16 as well.
const OLESegmentSize = math.MaxUint16

// Dictionary width limits.
const (
	// MaxDDC1Values is the largest dictionary a one-byte code array addresses.
	MaxDDC1Values = math.MaxUint8
	// MaxDDC2Values is the largest dictionary a two-byte code array addresses.
	MaxDDC2Values = math.MaxUint16 - 1
)

// BaseSize is the footprint shared by every scheme: the group header and the
// column index array.
func BaseSize(numCols int) int64 {
	return GroupHeaderSize + SliceHeaderSize + IntSize*int64(numCols)
}

// DictionarySize is the footprint of a numDistinct x numCols dictionary.
func DictionarySize(numDistinct, numCols int) int64 {
	return SliceHeaderSize + Float64Size*int64(numDistinct)*int64(numCols)
}

// DDC1Size estimates a dictionary-coded group with one-byte codes.
func DDC1Size(numCols, numRows, numDistinct int) int64 {
	return BaseSize(numCols) + DictionarySize(numDistinct, numCols) + SliceHeaderSize + int64(numRows)
}

// DDC2Size estimates a dictionary-coded group with two-byte codes.
func DDC2Size(numCols, numRows, numDistinct int) int64 {
	return BaseSize(numCols) + DictionarySize(numDistinct, numCols) + SliceHeaderSize + Uint16Size*int64(numRows)
}

// NumSegments returns the number of OLE segments spanning numRows.
func NumSegments(numRows int) int {
	return (numRows + OLESegmentSize - 1) / OLESegmentSize
}

// PointerSize is the footprint of the per-tuple pointer array of RLE/OLE.
func PointerSize(numDistinct int) int64 {
	return SliceHeaderSize + Uint32Size*int64(numDistinct+1)
}

// OLESize estimates an offset-list group.
// Each tuple stores a uint16 count per segment plus one uint16 per
// occurrence; the skip index holds one uint32 per tuple and segment when more
// than one segment exists.
func OLESize(numCols, numRows, numDistinct, numOffsets int) int64 {
	segs := int64(NumSegments(numRows))
	size := BaseSize(numCols) + DictionarySize(numDistinct, numCols) + PointerSize(numDistinct)
	size += SliceHeaderSize + Uint16Size*(int64(numOffsets)+int64(numDistinct)*segs)
	size += SliceHeaderSize
	if segs > 1 {
		size += Uint32Size * int64(numDistinct) * segs
	}
	return size
}

// RLESize estimates a run-length group with numRuns (gap, length) pairs.
func RLESize(numCols, numDistinct, numRuns int) int64 {
	return BaseSize(numCols) + DictionarySize(numDistinct, numCols) + PointerSize(numDistinct) +
		SliceHeaderSize + 2*Uint16Size*int64(numRuns)
}

// DenseSize is the footprint of numRows x numCols dense float64 storage.
func DenseSize(numRows, numCols int) int64 {
	return BaseSize(numCols) + SliceHeaderSize + Float64Size*int64(numRows)*int64(numCols)
}

// SparseSize is the footprint of a CSR-like layout with the given density.
func SparseSize(numRows, numCols int, sparsity float64) int64 {
	nnz := int64(math.Ceil(sparsity * float64(numRows) * float64(numCols)))
	return BaseSize(numCols) +
		SliceHeaderSize + Uint32Size*int64(numRows+1) + // row pointers
		SliceHeaderSize + Uint32Size*nnz + // column indexes
		SliceHeaderSize + Float64Size*nnz // values
}

// UncompressedSize is the uncompressed baseline: the smaller of the dense and
// sparse layouts.
func UncompressedSize(numRows, numCols int, sparsity float64) int64 {
	return min(DenseSize(numRows, numCols), SparseSize(numRows, numCols, sparsity))
}
