package format

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cla/colgroup"
	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/internal/hash"
	"github.com/hupe1980/cla/resource"
)

// recordHeaderSize is the scheme tag plus the block header.
const recordHeaderSize = 1 + blockHeaderSize

// maxGroupsHint caps the group slice preallocated from header counts.
const maxGroupsHint = 1 << 12

// Options configures Write.
type Options struct {
	// Compression is the block compression applied to group payloads.
	Compression CompressionType

	// Parallelism bounds the number of groups encoded concurrently.
	// If 0, defaults to GOMAXPROCS.
	Parallelism int

	// Resource, if set, throttles the bytes written to its IO limit.
	Resource *resource.Controller
}

// DefaultOptions returns LZ4 block compression with GOMAXPROCS encoders.
func DefaultOptions() Options {
	return Options{
		Compression: CompressionLZ4,
		Parallelism: runtime.GOMAXPROCS(0),
	}
}

// File is a decoded container.
type File struct {
	Header FileHeader
	Groups []colgroup.ColGroup
}

// Write encodes groups of a numRows x numCols matrix to w and returns the
// number of bytes written.
func Write(ctx context.Context, w io.Writer, numRows, numCols int, groups []colgroup.ColGroup, opts Options) (int64, error) {
	if numRows <= 0 || numCols <= 0 {
		return 0, fmt.Errorf("%w: %dx%d matrix", core.ErrInvalidArgument, numRows, numCols)
	}
	switch opts.Compression {
	case CompressionNone, CompressionLZ4, CompressionZSTD:
	default:
		return 0, fmt.Errorf("%w: compression type %d", core.ErrUnsupported, opts.Compression)
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}

	records, err := encodeRecords(ctx, groups, opts)
	if err != nil {
		return 0, err
	}

	crc := hash.New()
	var bodySize uint64
	for _, rec := range records {
		_, _ = crc.Write(rec)
		bodySize += uint64(len(rec))
	}

	h := FileHeader{
		Magic:       FormatMagic,
		Version:     FormatVersion,
		Compression: opts.Compression,
		NumRows:     uint64(numRows),
		NumCols:     uint64(numCols),
		NumGroups:   uint64(len(groups)),
		BodySize:    bodySize,
	}
	if opts.Compression != CompressionNone {
		h.Flags |= FlagBlockCompressed
	}

	var out io.Writer = w
	if opts.Resource != nil {
		out = resource.NewRateLimitedWriter(ctx, w, opts.Resource)
	}

	written, err := h.WriteTo(out)
	if err != nil {
		return written, err
	}
	for _, rec := range records {
		n, err := out.Write(rec)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	var tail [4]byte
	binary.LittleEndian.PutUint32(tail[:], crc.Sum32())
	n, err := out.Write(tail[:])
	written += int64(n)
	return written, err
}

func encodeRecords(ctx context.Context, groups []colgroup.ColGroup, opts Options) ([][]byte, error) {
	records := make([][]byte, len(groups))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Parallelism)
	for i, g := range groups {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			buf.Grow(int(g.ExactSizeOnDisk(false)))
			if _, err := g.Write(&buf, false); err != nil {
				return fmt.Errorf("format: group %d: %w", i, err)
			}
			block, err := encodeBlock(buf.Bytes(), opts.Compression)
			if err != nil {
				return fmt.Errorf("format: group %d: %w", i, err)
			}
			rec := make([]byte, 1, 1+len(block))
			rec[0] = byte(g.Scheme())
			records[i] = append(rec, block...)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// Read decodes a container from r. Every group is checked against the
// header dimensions; whether the groups cover each column exactly once is
// left to the caller.
func Read(r io.Reader) (*File, error) {
	f := &File{}
	if _, err := f.Header.ReadFrom(r); err != nil {
		return nil, err
	}
	h := &f.Header
	if h.NumRows == 0 || h.NumRows > math.MaxInt32 || h.NumCols == 0 || h.NumCols > math.MaxInt32 {
		return nil, fmt.Errorf("%w: format: %dx%d matrix", core.ErrCorrupted, h.NumRows, h.NumCols)
	}

	crc := hash.New()
	body := &countingReader{r: io.TeeReader(r, crc)}

	f.Groups = make([]colgroup.ColGroup, 0, min(h.NumGroups, h.BodySize/recordHeaderSize, maxGroupsHint))
	limit := colgroup.MaxPayloadSize(int(h.NumRows), int(h.NumCols)) //nolint:gosec
	for i := uint64(0); i < h.NumGroups; i++ {
		g, err := readRecord(body, h, limit)
		if err != nil {
			return nil, fmt.Errorf("format: group %d: %w", i, err)
		}
		f.Groups = append(f.Groups, g)
	}
	if body.n != h.BodySize {
		return nil, fmt.Errorf("%w: format: body of %d bytes, header says %d", core.ErrCorrupted, body.n, h.BodySize)
	}

	var tail [4]byte
	if _, err := io.ReadFull(r, tail[:]); err != nil {
		return nil, truncated(err)
	}
	if binary.LittleEndian.Uint32(tail[:]) != crc.Sum32() {
		return nil, ErrChecksum
	}
	return f, nil
}

// readRecord decodes one group record. Payloads announcing more than limit
// bytes are rejected before anything is allocated for them.
func readRecord(r io.Reader, h *FileHeader, limit int64) (colgroup.ColGroup, error) {
	var hdr [recordHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, truncated(err)
	}
	sc := core.Scheme(hdr[0])
	if !sc.Valid() {
		return nil, fmt.Errorf("%w: scheme %d", core.ErrUnsupported, hdr[0])
	}
	uncompressed := binary.LittleEndian.Uint32(hdr[1:5])
	compressed := binary.LittleEndian.Uint32(hdr[5:9])

	if int64(uncompressed) > limit {
		return nil, fmt.Errorf("%w: %s payload of %d bytes exceeds %d for a %dx%d matrix",
			core.ErrCorrupted, sc, uncompressed, limit, h.NumRows, h.NumCols)
	}

	stored := uncompressed
	if compressed != 0 {
		stored = compressed
	}
	packed, err := readN(r, stored)
	if err != nil {
		return nil, err
	}
	raw := packed
	if compressed != 0 {
		if raw, err = decodeBlock(packed, uncompressed, h.Compression); err != nil {
			return nil, err
		}
	}

	br := bytes.NewReader(raw)
	g, err := colgroup.ReadRows(br, sc, int(h.NumRows)) //nolint:gosec
	if err != nil {
		return nil, err
	}
	if br.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes in %s payload", core.ErrCorrupted, br.Len(), sc)
	}
	if err := core.CheckColumns(g.ColIndexes(), int(h.NumCols)); err != nil { //nolint:gosec
		return nil, fmt.Errorf("%w: %w", core.ErrCorrupted, err)
	}
	return g, nil
}

// readN reads exactly n bytes without trusting n for the allocation.
func readN(r io.Reader, n uint32) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return nil, err
	}
	if uint32(len(buf)) != n { //nolint:gosec
		return nil, fmt.Errorf("%w: format: truncated block", core.ErrCorrupted)
	}
	return buf, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: format: unexpected end of file", core.ErrCorrupted)
	}
	return err
}

type countingReader struct {
	r io.Reader
	n uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += uint64(n) //nolint:gosec
	return n, err
}
