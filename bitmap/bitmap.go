package bitmap

import (
	"fmt"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/cla/core"
)

// ZeroPolicy controls whether the all-zero tuple is materialized.
type ZeroPolicy uint8

const (
	// ZeroImplicit omits all-zero rows from the bitmap.
	ZeroImplicit ZeroPolicy = iota
	// ZeroExplicit stores the all-zero tuple like any other tuple.
	ZeroExplicit
)

// String returns the string representation of the policy.
func (p ZeroPolicy) String() string {
	switch p {
	case ZeroImplicit:
		return "implicit"
	case ZeroExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// Config configures extraction.
type Config struct {
	// Zero selects how all-zero rows are represented.
	Zero ZeroPolicy
}

// DefaultConfig returns the default extraction configuration.
func DefaultConfig() Config {
	return Config{Zero: ZeroImplicit}
}

// MaxRows is the largest row count a Bitmap can address.
const MaxRows = math.MaxUint32

// Bitmap maps each distinct value tuple of a column set to the ascending
// row offsets where it occurs.
//
// Tuples are numbered in order of first occurrence, which makes extraction
// deterministic for a given matrix. A Bitmap is immutable after construction.
type Bitmap struct {
	cols       []int
	numRows    int
	values     []float64  // numValues * numCols, row-major
	offsets    [][]uint32 // per tuple, ascending
	numOffsets int
	zero       ZeroPolicy
}

// New assembles a Bitmap from precomputed parts and validates it.
// values is row-major with len(values) == len(offsets)*len(cols).
func New(cols []int, numRows int, values []float64, offsets [][]uint32, zero ZeroPolicy) (*Bitmap, error) {
	if len(cols) == 0 {
		return nil, core.ErrEmptyColumns
	}
	if numRows <= 0 || numRows > MaxRows {
		return nil, fmt.Errorf("%w: row count %d", core.ErrInvalidArgument, numRows)
	}
	if len(values) != len(offsets)*len(cols) {
		return nil, fmt.Errorf("%w: %d values for %d tuples of width %d",
			core.ErrInvalidArgument, len(values), len(offsets), len(cols))
	}
	b := &Bitmap{
		cols:    slices.Clone(cols),
		numRows: numRows,
		values:  values,
		offsets: offsets,
		zero:    zero,
	}
	for _, o := range offsets {
		b.numOffsets += len(o)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Columns returns the column indexes of the bitmap. Do not modify.
func (b *Bitmap) Columns() []int { return b.cols }

// NumCols returns the width of each tuple.
func (b *Bitmap) NumCols() int { return len(b.cols) }

// NumRows returns the number of rows of the source matrix.
func (b *Bitmap) NumRows() int { return b.numRows }

// NumValues returns the number of stored distinct tuples.
func (b *Bitmap) NumValues() int { return len(b.offsets) }

// ZeroPolicy returns the policy the bitmap was extracted with.
func (b *Bitmap) ZeroPolicy() ZeroPolicy { return b.zero }

// Values returns the values of tuple k. Do not modify.
func (b *Bitmap) Values(k int) []float64 {
	nc := len(b.cols)
	return b.values[k*nc : (k+1)*nc : (k+1)*nc]
}

// AllValues returns every tuple, row-major. Do not modify.
func (b *Bitmap) AllValues() []float64 { return b.values }

// Offsets returns the ascending rows of tuple k. Do not modify.
func (b *Bitmap) Offsets(k int) []uint32 { return b.offsets[k] }

// NumOffsets returns the number of rows holding tuple k.
func (b *Bitmap) NumOffsets(k int) int { return len(b.offsets[k]) }

// TotalOffsets returns the number of (tuple, row) occurrences stored.
func (b *Bitmap) TotalOffsets() int { return b.numOffsets }

// NumZeroRows returns the number of rows not covered by any stored tuple.
func (b *Bitmap) NumZeroRows() int { return b.numRows - b.numOffsets }

// ZeroTupleIndex returns the index of a stored all-zero tuple, or -1.
func (b *Bitmap) ZeroTupleIndex() int {
	for k := range b.offsets {
		if isZero(b.Values(k)) {
			return k
		}
	}
	return -1
}

// ContainsZeros reports whether some row of the column set is all zero.
func (b *Bitmap) ContainsZeros() bool {
	return b.NumZeroRows() > 0 || b.ZeroTupleIndex() >= 0
}

// ZeroRows returns the rows not covered by any stored tuple.
// Under ZeroImplicit these are exactly the all-zero rows.
func (b *Bitmap) ZeroRows() *roaring.Bitmap {
	return Uncovered(b.numRows, b.offsets)
}

// Uncovered returns the rows in [0, numRows) that appear in none of the
// offset lists.
func Uncovered(numRows int, offsets [][]uint32) *roaring.Bitmap {
	rb := roaring.New()
	for _, o := range offsets {
		rb.AddMany(o)
	}
	rb.Flip(0, uint64(numRows))
	return rb
}

// NumRuns returns the number of (gap, length) pairs the run-length encoding
// of tuple k emits.
func (b *Bitmap) NumRuns(k int) int { return CountRunPairs(b.offsets[k]) }

// TotalRuns returns the number of run pairs across all tuples.
func (b *Bitmap) TotalRuns() int {
	n := 0
	for _, o := range b.offsets {
		n += CountRunPairs(o)
	}
	return n
}

// NonZeroCells returns the number of nonzero cells of the column set.
func (b *Bitmap) NonZeroCells() int64 {
	var nnz int64
	for k, o := range b.offsets {
		nnz += int64(nonZeros(b.Values(k))) * int64(len(o))
	}
	return nnz
}

// Sparsity returns the fraction of nonzero cells in [0, 1].
func (b *Bitmap) Sparsity() float64 {
	cells := float64(b.numRows) * float64(len(b.cols))
	return float64(b.NonZeroCells()) / cells
}

// Validate checks the partition property: every stored offset is in range,
// offsets are strictly ascending per tuple and no row is held by two tuples.
func (b *Bitmap) Validate() error {
	seen := bitset.New(uint(b.numRows))
	for k, o := range b.offsets {
		if len(o) == 0 {
			return core.Invariantf("bitmap", b.cols, "tuple %d has no rows", k)
		}
		prev := int64(-1)
		for _, r := range o {
			if int64(r) <= prev {
				return core.Invariantf("bitmap", b.cols, "tuple %d offsets not ascending at row %d", k, r)
			}
			if int(r) >= b.numRows {
				return core.Invariantf("bitmap", b.cols, "tuple %d row %d beyond %d rows", k, r, b.numRows)
			}
			if seen.Test(uint(r)) {
				return core.Invariantf("bitmap", b.cols, "row %d held by more than one tuple", r)
			}
			seen.Set(uint(r))
			prev = int64(r)
		}
	}
	if b.zero == ZeroExplicit && seen.Count() != uint(b.numRows) {
		return core.Invariantf("bitmap", b.cols, "explicit bitmap covers %d of %d rows", seen.Count(), b.numRows)
	}
	return nil
}

func isZero(vals []float64) bool {
	for _, v := range vals {
		if v != 0 {
			return false
		}
	}
	return true
}

func nonZeros(vals []float64) int {
	n := 0
	for _, v := range vals {
		if v != 0 {
			n++
		}
	}
	return n
}
