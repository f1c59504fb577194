package bitmap

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/cla/core"
)

// Extract builds the Bitmap of cols over all rows of m with the default
// configuration.
func Extract(cols []int, m core.Matrix) (*Bitmap, error) {
	return ExtractWithConfig(cols, m, DefaultConfig())
}

// ExtractWithConfig builds the Bitmap of cols over all rows of m.
//
// It returns core.ErrInvalidArgument for an empty column set or an empty
// matrix, and a *core.ColumnIndexError for a column outside the matrix.
// Time O(rows * len(cols)), extra space O(distinct tuples).
func ExtractWithConfig(cols []int, m core.Matrix, cfg Config) (*Bitmap, error) {
	rows, numCols := m.Dims()
	if err := core.CheckColumns(cols, numCols); err != nil {
		return nil, err
	}
	if rows <= 0 || rows > MaxRows {
		return nil, fmt.Errorf("%w: row count %d", core.ErrInvalidArgument, rows)
	}

	var b builder
	if len(cols) == 1 {
		b = extractSingle(cols[0], rows, m, cfg.Zero)
	} else {
		b = extractMulti(cols, rows, m, cfg.Zero)
	}

	bm := &Bitmap{
		cols:       append([]int(nil), cols...),
		numRows:    rows,
		values:     b.values,
		offsets:    b.offsets,
		numOffsets: b.numOffsets,
		zero:       cfg.Zero,
	}
	return bm, nil
}

type builder struct {
	values     []float64
	offsets    [][]uint32
	numOffsets int
}

func (b *builder) add(k int, row int) {
	b.offsets[k] = append(b.offsets[k], uint32(row))
	b.numOffsets++
}

func (b *builder) newTuple(vals ...float64) int {
	b.values = append(b.values, vals...)
	b.offsets = append(b.offsets, nil)
	return len(b.offsets) - 1
}

// keyBits normalizes -0 to +0 so both zeros share a tuple.
func keyBits(v float64) uint64 {
	if v == 0 {
		return 0
	}
	return math.Float64bits(v)
}

func extractSingle(col, rows int, m core.Matrix, zero ZeroPolicy) builder {
	var b builder
	index := make(map[uint64]int)
	for r := 0; r < rows; r++ {
		v := m.At(r, col)
		if v == 0 {
			if zero == ZeroImplicit {
				continue
			}
			v = 0
		}
		key := keyBits(v)
		k, ok := index[key]
		if !ok {
			k = b.newTuple(v)
			index[key] = k
		}
		b.add(k, r)
	}
	return b
}

func extractMulti(cols []int, rows int, m core.Matrix, zero ZeroPolicy) builder {
	var b builder
	nc := len(cols)
	index := make(map[string]int)
	tuple := make([]float64, nc)
	key := make([]byte, 8*nc)

	for r := 0; r < rows; r++ {
		allZero := true
		for j, c := range cols {
			v := m.At(r, c)
			if v == 0 {
				v = 0
			} else {
				allZero = false
			}
			tuple[j] = v
			binary.LittleEndian.PutUint64(key[8*j:], keyBits(v))
		}
		if allZero && zero == ZeroImplicit {
			continue
		}
		// string(key) in a map index expression does not allocate.
		k, ok := index[string(key)]
		if !ok {
			k = b.newTuple(tuple...)
			index[string(key)] = k
		}
		b.add(k, r)
	}
	return b
}
