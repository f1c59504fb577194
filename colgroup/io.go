package colgroup

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/estim"
	"github.com/hupe1980/cla/internal/conv"
)

// All integers are little-endian.
//
//	dictionary groups: int32 rows | int32 cols | int32 distinct | int32[cols] column indexes
//	                   | float64[distinct*cols] dictionary (unless skipped) | payload
//	DDC1 payload:      uint8[rows] codes
//	DDC2 payload:      uint16[rows] codes
//	RLE payload:       int32 len(ptr) | int32[ptr] | int32 len(data) | uint16[data]
//	OLE payload:       RLE payload | int32 len(skip) | int32[skip]
//	uncompressed:      int32 rows | int32 cols | int32[cols] column indexes | float64[rows*cols]

func dictHeaderSize(g ColGroup, skipDict bool) int64 {
	size := int64(12) + 4*int64(g.NumCols())
	if !skipDict {
		size += 8 * int64(len(g.Dictionary()))
	}
	return size
}

func (g *DDC[C]) ExactSizeOnDisk(skipDict bool) int64 {
	width := int64(1)
	if isWide[C]() {
		width = 2
	}
	return dictHeaderSize(g, skipDict) + width*int64(g.numRows)
}

func (g *RLE) ExactSizeOnDisk(skipDict bool) int64 {
	return dictHeaderSize(g, skipDict) + 8 + 4*int64(len(g.ptr)) + 2*int64(len(g.data))
}

func (g *OLE) ExactSizeOnDisk(skipDict bool) int64 {
	return dictHeaderSize(g, skipDict) + 12 + 4*int64(len(g.ptr)) + 2*int64(len(g.data)) + 4*int64(len(g.skip))
}

// ExactSizeOnDisk ignores skipDict; uncompressed groups have no dictionary.
func (g *Uncompressed) ExactSizeOnDisk(bool) int64 {
	return 8 + 4*int64(len(g.cols)) + 8*int64(len(g.values))
}

func (g *DDC[C]) Write(w io.Writer, skipDict bool) (int64, error) {
	e := newEncoder(g.ExactSizeOnDisk(skipDict))
	e.dictHeader(g, skipDict)
	if isWide[C]() {
		for _, c := range g.codes {
			e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(c))
		}
	} else {
		for _, c := range g.codes {
			e.buf = append(e.buf, uint8(c))
		}
	}
	return e.flush(w)
}

func (g *RLE) Write(w io.Writer, skipDict bool) (int64, error) {
	e := newEncoder(g.ExactSizeOnDisk(skipDict))
	e.dictHeader(g, skipDict)
	e.uint32s(g.ptr)
	e.uint16s(g.data)
	return e.flush(w)
}

func (g *OLE) Write(w io.Writer, skipDict bool) (int64, error) {
	e := newEncoder(g.ExactSizeOnDisk(skipDict))
	e.dictHeader(g, skipDict)
	e.uint32s(g.ptr)
	e.uint16s(g.data)
	e.uint32s(g.skip)
	return e.flush(w)
}

func (g *Uncompressed) Write(w io.Writer, _ bool) (int64, error) {
	e := newEncoder(g.ExactSizeOnDisk(false))
	e.int32(g.numRows)
	e.int32(len(g.cols))
	e.ints(g.cols)
	e.float64s(g.values)
	return e.flush(w)
}

type encoder struct {
	buf []byte
	err error
}

func newEncoder(size int64) *encoder {
	return &encoder{buf: make([]byte, 0, size)}
}

func (e *encoder) int32(v int) {
	n, err := conv.IntToInt32(v)
	if err != nil && e.err == nil {
		e.err = err
	}
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(n))
}

func (e *encoder) ints(vs []int) {
	for _, v := range vs {
		e.int32(v)
	}
}

// uint32s writes a length-prefixed uint32 array.
func (e *encoder) uint32s(vs []uint32) {
	e.int32(len(vs))
	for _, v := range vs {
		e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
	}
}

// uint16s writes a length-prefixed uint16 array.
func (e *encoder) uint16s(vs []uint16) {
	e.int32(len(vs))
	for _, v := range vs {
		e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
	}
}

func (e *encoder) float64s(vs []float64) {
	for _, v := range vs {
		e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(v))
	}
}

func (e *encoder) dictHeader(g ColGroup, skipDict bool) {
	e.int32(g.NumRows())
	e.int32(g.NumCols())
	e.int32(g.NumValues())
	e.ints(g.ColIndexes())
	if !skipDict {
		e.float64s(g.Dictionary())
	}
}

func (e *encoder) flush(w io.Writer) (int64, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := w.Write(e.buf)
	return int64(n), err
}

// Read decodes a group of scheme sc written with its dictionary.
//
// Counts in the payload are checked against the bytes r still holds before
// anything is allocated when r reports its length (as *bytes.Reader does).
// Other readers are consumed incrementally, so a short payload fails with
// core.ErrCorrupted instead of allocating what its counts claim.
func Read(r io.Reader, sc core.Scheme) (ColGroup, error) {
	return read(r, sc, nil, false, 0)
}

// ReadRows is Read for a group of a matrix with numRows rows. A payload
// announcing another row count is rejected before its body is decoded.
func ReadRows(r io.Reader, sc core.Scheme, numRows int) (ColGroup, error) {
	if numRows <= 0 {
		return nil, fmt.Errorf("%w: row count %d", core.ErrInvalidArgument, numRows)
	}
	return read(r, sc, nil, false, numRows)
}

// ReadWithDictionary decodes a group written with skipDict set, attaching
// dictionary to it. The dictionary is retained, not copied.
func ReadWithDictionary(r io.Reader, sc core.Scheme, dictionary []float64) (ColGroup, error) {
	return read(r, sc, dictionary, true, 0)
}

// MaxPayloadSize bounds the encoded size of any group the writer emits for
// a matrix of numRows x numCols. It saturates at math.MaxInt64.
func MaxPayloadSize(numRows, numCols int) int64 {
	segs := estim.NumSegments(numRows)
	total := int64(64)
	for _, term := range []int{span(4, numCols), span(8, numRows, numCols), span(16, numRows, segs+2)} {
		if term < 0 || int64(term) > math.MaxInt64-total {
			return math.MaxInt64
		}
		total += int64(term)
	}
	return total
}

func read(r io.Reader, sc core.Scheme, dictionary []float64, skipDict bool, wantRows int) (ColGroup, error) {
	d := newDecoder(r)
	if sc == core.SchemeUncompressed {
		return d.uncompressed(wantRows)
	}
	if !sc.Valid() {
		return nil, fmt.Errorf("%w: scheme %d", core.ErrUnsupported, sc)
	}

	numRows, nc, nv := d.count(), d.count(), d.count()
	if d.err == nil && wantRows > 0 && numRows != wantRows {
		return nil, corruptf("group of %d rows in a %d-row matrix", numRows, wantRows)
	}
	cols := d.ints(nc)
	if d.err != nil {
		return nil, d.err
	}
	if err := checkHeader(numRows, cols); err != nil {
		return nil, err
	}
	values := dictionary
	if skipDict {
		if n := span(1, nv, nc); n < 0 || len(dictionary) != n {
			return nil, fmt.Errorf("%w: dictionary of %d values for %d tuples of width %d",
				core.ErrInvalidArgument, len(dictionary), nv, nc)
		}
	} else {
		values = d.float64s(nv, nc)
	}
	b := base{cols: cols, numRows: numRows}
	dv := dict{values: values, nc: nc}

	switch sc {
	case core.SchemeDDC1:
		codes := d.bytes(numRows)
		return readDDC(d, b, dv, codes)
	case core.SchemeDDC2:
		codes := d.uint16s(numRows)
		return readDDC(d, b, dv, codes)
	case core.SchemeRLE:
		ptr := d.uint32s(d.count())
		data := d.uint16s(d.count())
		if d.err != nil {
			return nil, d.err
		}
		g := &RLE{base: b, dict: dv, ptr: ptr, data: data}
		if err := g.validate(); err != nil {
			return nil, err
		}
		return g, nil
	default: // core.SchemeOLE
		ptr := d.uint32s(d.count())
		data := d.uint16s(d.count())
		skip := d.uint32s(d.count())
		if d.err != nil {
			return nil, d.err
		}
		g := &OLE{base: b, dict: dv, ptr: ptr, data: data, skip: skip}
		if err := g.validate(); err != nil {
			return nil, err
		}
		return g, nil
	}
}

func readDDC[C Code](d *decoder, b base, dv dict, codes []C) (ColGroup, error) {
	if d.err != nil {
		return nil, d.err
	}
	nv := dv.NumValues()
	if nv > maxValues[C]() {
		return nil, corruptf("%d tuples exceed code capacity %d", nv, maxValues[C]())
	}
	for r, c := range codes {
		if int(c) >= nv {
			return nil, corruptf("row %d: code %d out of range for %d tuples", r, c, nv)
		}
	}
	g := &DDC[C]{base: b, dict: dv, codes: codes}
	g.zeros = g.hasZeroTuple()
	return g, nil
}

func checkHeader(numRows int, cols []int) error {
	if numRows == 0 || len(cols) == 0 {
		return corruptf("empty group: %d rows, %d columns", numRows, len(cols))
	}
	for i, c := range cols {
		if i > 0 && c <= cols[i-1] {
			return corruptf("column indexes not ascending: %v", cols)
		}
	}
	return nil
}

// checkPointers validates that ptr partitions a data array of dataLen entries
// into nv tuples.
func checkPointers(ptr []uint32, dataLen, nv int) error {
	if len(ptr) != nv+1 || ptr[0] != 0 || int(ptr[nv]) != dataLen {
		return corruptf("pointer array does not span %d tuples over %d entries", nv, dataLen)
	}
	if !slices.IsSorted(ptr) {
		return corruptf("pointer array not ascending")
	}
	return nil
}

// validate checks the run encoding and that no row is covered twice.
func (g *RLE) validate() error {
	nv := g.NumValues()
	if err := checkPointers(g.ptr, len(g.data), nv); err != nil {
		return err
	}
	seen := bitset.New(uint(g.numRows))
	for k := 0; k < nv; k++ {
		if (g.ptr[k+1]-g.ptr[k])%2 != 0 {
			return corruptf("tuple %d: odd run data length", k)
		}
		var err error
		d := g.data[g.ptr[k]:g.ptr[k+1]]
		pos := 0
		for i := 0; i < len(d) && err == nil; i += 2 {
			start := pos + int(d[i])
			pos = start + int(d[i+1])
			if pos > g.numRows {
				return corruptf("tuple %d: run [%d, %d) beyond %d rows", k, start, pos, g.numRows)
			}
			err = cover(seen, start, pos)
		}
		if err != nil {
			return err
		}
	}
	g.numOffsets = int(seen.Count())
	g.zeros = g.numOffsets < g.numRows || g.hasZeroTuple()
	return nil
}

// validate checks the segment layout, the skip index and that no row is
// covered twice.
func (g *OLE) validate() error {
	nv := g.NumValues()
	if err := checkPointers(g.ptr, len(g.data), nv); err != nil {
		return err
	}
	segs := g.numSegments()
	if segs > 1 && len(g.skip) != nv*segs || segs == 1 && len(g.skip) != 0 {
		return corruptf("skip index of %d entries for %d tuples and %d segments", len(g.skip), nv, segs)
	}
	if len(g.skip) == 0 {
		g.skip = nil
	}
	seen := bitset.New(uint(g.numRows))
	for k := 0; k < nv; k++ {
		pos, end := int(g.ptr[k]), int(g.ptr[k+1])
		for s := 0; s < segs; s++ {
			if pos >= end {
				return corruptf("tuple %d: truncated at segment %d", k, s)
			}
			if g.skip != nil && int(g.skip[k*segs+s]) != pos {
				return corruptf("tuple %d: skip entry %d points to %d, want %d", k, s, g.skip[k*segs+s], pos)
			}
			n := int(g.data[pos])
			if pos+1+n > end {
				return corruptf("tuple %d: segment %d overruns its data", k, s)
			}
			prev := -1
			for _, off := range g.data[pos+1 : pos+1+n] {
				r := s*segmentSize + int(off)
				if r <= prev || r >= g.numRows {
					return corruptf("tuple %d: offset %d out of order or range", k, r)
				}
				if err := cover(seen, r, r+1); err != nil {
					return err
				}
				prev = r
			}
			pos += 1 + n
		}
		if pos != end {
			return corruptf("tuple %d: %d trailing entries", k, end-pos)
		}
	}
	g.numOffsets = int(seen.Count())
	g.zeros = g.numOffsets < g.numRows || g.hasZeroTuple()
	return nil
}

func cover(seen *bitset.BitSet, start, end int) error {
	for r := start; r < end; r++ {
		if seen.Test(uint(r)) {
			return corruptf("row %d covered twice", r)
		}
		seen.Set(uint(r))
	}
	return nil
}

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", core.ErrCorrupted, fmt.Sprintf(format, args...))
}

// span returns elem times every count, or -1 when the product overflows.
// Counts are non-negative.
func span(elem int, counts ...int) int {
	total := elem
	for _, c := range counts {
		if c != 0 && total > math.MaxInt/c {
			return -1
		}
		total *= c
	}
	return total
}

// decoder reads little-endian values and keeps the first error.
type decoder struct {
	r         io.Reader
	remaining int64 // bytes left in r, or -1 when r does not say
	err       error
}

func newDecoder(r io.Reader) *decoder {
	d := &decoder{r: r, remaining: -1}
	if l, ok := r.(interface{ Len() int }); ok {
		d.remaining = int64(l.Len())
	}
	return d
}

// fill reads n bytes. A negative n marks a size that overflowed.
func (d *decoder) fill(n int) []byte {
	if d.err != nil {
		return nil
	}
	switch {
	case n < 0:
		d.err = corruptf("payload size overflows")
		return nil
	case d.remaining >= 0 && int64(n) > d.remaining:
		d.err = corruptf("payload needs %d bytes, %d remain", n, d.remaining)
		return nil
	}

	var buf []byte
	var err error
	if d.remaining >= 0 {
		buf = make([]byte, n)
		_, err = io.ReadFull(d.r, buf)
		d.remaining -= int64(n)
	} else {
		buf, err = io.ReadAll(io.LimitReader(d.r, int64(n)))
		if err == nil && len(buf) != n {
			err = io.ErrUnexpectedEOF
		}
	}
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("%w: %w", core.ErrCorrupted, io.ErrUnexpectedEOF)
		}
		d.err = err
		return nil
	}
	return buf
}

func (d *decoder) toCount(v uint32) int {
	n, err := conv.Int32ToCount(int32(v)) //nolint:gosec
	if err != nil {
		d.err = fmt.Errorf("%w: %w", core.ErrCorrupted, err)
		return 0
	}
	return n
}

// count reads a non-negative int32.
func (d *decoder) count() int {
	buf := d.fill(4)
	if buf == nil {
		return 0
	}
	return d.toCount(binary.LittleEndian.Uint32(buf))
}

func (d *decoder) ints(n int) []int {
	buf := d.fill(span(4, n))
	if buf == nil {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = d.toCount(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	if d.err != nil {
		return nil
	}
	return out
}

func (d *decoder) uint32s(n int) []uint32 {
	buf := d.fill(span(4, n))
	if buf == nil {
		return nil
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[4*i:])
	}
	return out
}

func (d *decoder) uint16s(n int) []uint16 {
	buf := d.fill(span(2, n))
	if buf == nil {
		return nil
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(buf[2*i:])
	}
	return out
}

func (d *decoder) bytes(n int) []uint8 {
	return d.fill(n)
}

// float64s reads the product of counts values.
func (d *decoder) float64s(counts ...int) []float64 {
	buf := d.fill(span(8, counts...))
	if buf == nil {
		return nil
	}
	out := make([]float64, len(buf)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return out
}

func (d *decoder) uncompressed(wantRows int) (ColGroup, error) {
	numRows, nc := d.count(), d.count()
	if d.err == nil && wantRows > 0 && numRows != wantRows {
		return nil, corruptf("group of %d rows in a %d-row matrix", numRows, wantRows)
	}
	cols := d.ints(nc)
	if d.err != nil {
		return nil, d.err
	}
	if err := checkHeader(numRows, cols); err != nil {
		return nil, err
	}
	values := d.float64s(numRows, nc)
	if d.err != nil {
		return nil, d.err
	}
	return newUncompressed(cols, numRows, values), nil
}
