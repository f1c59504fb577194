package format

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cla/bitmap"
	"github.com/hupe1980/cla/colgroup"
	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/resource"
	"github.com/hupe1980/cla/testutil"
)

// testGroups covers a 400x6 matrix with one group of every scheme.
func testGroups(t *testing.T) (*mat.Dense, []colgroup.ColGroup) {
	t.Helper()
	rng := testutil.NewRNG(7)
	m := mat.NewDense(400, 6, nil)
	m.Slice(0, 400, 0, 2).(*mat.Dense).Copy(rng.RedundantMatrix(400, 2, 5))
	m.Slice(0, 400, 2, 3).(*mat.Dense).Copy(rng.RunMatrix(400, 1, 50, 3))
	m.Slice(0, 400, 3, 4).(*mat.Dense).Copy(rng.SparseMatrix(400, 1, 0.05, 4))
	m.Slice(0, 400, 4, 6).(*mat.Dense).Copy(rng.UniqueMatrix(400, 2))

	build := func(sc core.Scheme, cols ...int) colgroup.ColGroup {
		bm, err := bitmap.Extract(cols, m)
		require.NoError(t, err)
		g, err := colgroup.Build(bm, sc)
		require.NoError(t, err)
		return g
	}
	unc, err := colgroup.NewUncompressed([]int{4, 5}, m)
	require.NoError(t, err)

	return m, []colgroup.ColGroup{
		build(core.SchemeDDC1, 0, 1),
		build(core.SchemeRLE, 2),
		build(core.SchemeOLE, 3),
		unc,
	}
}

func TestHeader_RoundTrip(t *testing.T) {
	h := FileHeader{
		Magic:       FormatMagic,
		Version:     FormatVersion,
		Flags:       FlagBlockCompressed,
		Compression: CompressionZSTD,
		NumRows:     1000,
		NumCols:     12,
		NumGroups:   3,
		BodySize:    4096,
	}
	var buf bytes.Buffer
	n, err := h.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize), n)
	assert.Equal(t, []byte("CLA0"), buf.Bytes()[:4])

	var got FileHeader
	_, err = got.ReadFrom(&buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, int64(HeaderSize+4096+4), got.TotalSize())
}

func TestHeader_Rejects(t *testing.T) {
	valid := FileHeader{Magic: FormatMagic, Version: FormatVersion, NumRows: 1, NumCols: 1}

	t.Run("magic", func(t *testing.T) {
		raw := valid.encode()
		raw[0] ^= 0xff
		_, err := new(FileHeader).ReadFrom(bytes.NewReader(raw))
		assert.ErrorIs(t, err, ErrInvalidMagic)
		assert.ErrorIs(t, err, core.ErrCorrupted)
	})
	t.Run("checksum", func(t *testing.T) {
		raw := valid.encode()
		raw[20] ^= 0x01
		_, err := new(FileHeader).ReadFrom(bytes.NewReader(raw))
		assert.ErrorIs(t, err, ErrChecksum)
	})
	t.Run("version", func(t *testing.T) {
		h := valid
		h.Version = FormatVersion + 1
		_, err := new(FileHeader).ReadFrom(bytes.NewReader(h.encode()))
		assert.ErrorIs(t, err, ErrInvalidVersion)
		assert.ErrorIs(t, err, core.ErrUnsupported)
	})
	t.Run("compression", func(t *testing.T) {
		h := valid
		h.Compression = 9
		_, err := new(FileHeader).ReadFrom(bytes.NewReader(h.encode()))
		assert.ErrorIs(t, err, core.ErrUnsupported)
	})
	t.Run("truncated", func(t *testing.T) {
		_, err := new(FileHeader).ReadFrom(bytes.NewReader(valid.encode()[:30]))
		assert.ErrorIs(t, err, core.ErrCorrupted)
	})
}

func TestWriteRead_RoundTrip(t *testing.T) {
	m, groups := testGroups(t)

	for _, ct := range []CompressionType{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(ct.String(), func(t *testing.T) {
			var buf bytes.Buffer
			n, err := Write(context.Background(), &buf, 400, 6, groups, Options{Compression: ct, Parallelism: 2})
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), n)

			f, err := Read(&buf)
			require.NoError(t, err)
			assert.Zero(t, buf.Len())
			assert.Equal(t, n, f.Header.TotalSize())
			assert.Equal(t, uint64(400), f.Header.NumRows)
			assert.Equal(t, uint64(6), f.Header.NumCols)
			assert.Equal(t, ct != CompressionNone, f.Header.Flags&FlagBlockCompressed != 0)
			require.Len(t, f.Groups, len(groups))

			for i, g := range f.Groups {
				assert.Equal(t, groups[i].Scheme(), g.Scheme())
				assert.Equal(t, groups[i].ColIndexes(), g.ColIndexes())
			}
			out := mat.NewDense(400, 6, nil)
			for _, g := range f.Groups {
				g.DecompressInto(out, core.AllRows(400))
			}
			assert.True(t, mat.Equal(m, out))
		})
	}
}

func TestWrite_CompressesRedundantPayload(t *testing.T) {
	data := make([]float64, 4000)
	g, err := colgroup.NewUncompressed([]int{0}, mat.NewDense(4000, 1, data))
	require.NoError(t, err)

	var raw, packed bytes.Buffer
	_, err = Write(context.Background(), &raw, 4000, 1, []colgroup.ColGroup{g}, Options{Compression: CompressionNone})
	require.NoError(t, err)
	_, err = Write(context.Background(), &packed, 4000, 1, []colgroup.ColGroup{g}, Options{Compression: CompressionLZ4})
	require.NoError(t, err)
	assert.Less(t, packed.Len(), raw.Len()/10)

	rec := packed.Bytes()[HeaderSize:]
	assert.Equal(t, byte(core.SchemeUncompressed), rec[0])
	assert.Equal(t, uint32(g.ExactSizeOnDisk(false)), binary.LittleEndian.Uint32(rec[1:5]))
	assert.NotZero(t, binary.LittleEndian.Uint32(rec[5:9]))
}

func TestWrite_StoresIncompressiblePayloadRaw(t *testing.T) {
	rng := testutil.NewRNG(3)
	g, err := colgroup.NewUncompressed([]int{0}, rng.UniqueMatrix(256, 1))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Write(context.Background(), &buf, 256, 1, []colgroup.ColGroup{g}, Options{Compression: CompressionLZ4})
	require.NoError(t, err)

	rec := buf.Bytes()[HeaderSize:]
	assert.Zero(t, binary.LittleEndian.Uint32(rec[5:9]), "compressed size")

	f, err := Read(&buf)
	require.NoError(t, err)
	got, ok := f.Groups[0].(*colgroup.Uncompressed)
	require.True(t, ok)
	assert.Equal(t, g.Values(), got.Values())
}

func TestRead_DetectsCorruption(t *testing.T) {
	_, groups := testGroups(t)
	var buf bytes.Buffer
	_, err := Write(context.Background(), &buf, 400, 6, groups, Options{Compression: CompressionNone})
	require.NoError(t, err)
	raw := buf.Bytes()

	t.Run("body", func(t *testing.T) {
		bad := bytes.Clone(raw)
		bad[len(bad)-20] ^= 0x10
		_, err := Read(bytes.NewReader(bad))
		assert.ErrorIs(t, err, core.ErrCorrupted)
	})
	t.Run("trailer", func(t *testing.T) {
		bad := bytes.Clone(raw)
		bad[len(bad)-1] ^= 0xff
		_, err := Read(bytes.NewReader(bad))
		assert.ErrorIs(t, err, ErrChecksum)
	})
	t.Run("truncated", func(t *testing.T) {
		_, err := Read(bytes.NewReader(raw[:len(raw)-100]))
		assert.ErrorIs(t, err, core.ErrCorrupted)
	})
	t.Run("scheme", func(t *testing.T) {
		bad := bytes.Clone(raw)
		bad[HeaderSize] = 42
		_, err := Read(bytes.NewReader(bad))
		assert.ErrorIs(t, err, core.ErrUnsupported)
	})
}

func TestRead_RejectsGroupOutsideMatrix(t *testing.T) {
	_, groups := testGroups(t)
	var buf bytes.Buffer
	// the uncompressed group holds columns 4 and 5
	_, err := Write(context.Background(), &buf, 400, 5, groups, Options{})
	require.NoError(t, err)

	_, err = Read(&buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrCorrupted)
	assert.ErrorIs(t, err, core.ErrOutOfRange)
}

func TestWrite_InvalidArguments(t *testing.T) {
	_, err := Write(context.Background(), &bytes.Buffer{}, 0, 3, nil, Options{})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = Write(context.Background(), &bytes.Buffer{}, 3, 3, nil, Options{Compression: 7})
	assert.ErrorIs(t, err, core.ErrUnsupported)

	_, err = ParseCompressionType("brotli")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	ct, err := ParseCompressionType("zstd")
	require.NoError(t, err)
	assert.Equal(t, CompressionZSTD, ct)
}

func TestWrite_RateLimited(t *testing.T) {
	_, groups := testGroups(t)
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30})

	var buf bytes.Buffer
	_, err := Write(context.Background(), &buf, 400, 6, groups, Options{Resource: rc})
	require.NoError(t, err)

	_, err = Read(&buf)
	require.NoError(t, err)
}

func TestWrite_CanceledContext(t *testing.T) {
	_, groups := testGroups(t)
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 16})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := Write(ctx, &bytes.Buffer{}, 400, 6, groups, Options{Resource: rc})
	require.Error(t, err)
}

// container frames records behind a header with a valid checksum. The body
// checksum is left zero; readers must fail before they reach it.
func container(t *testing.T, h FileHeader, records ...[]byte) []byte {
	t.Helper()
	h.Magic, h.Version = FormatMagic, FormatVersion
	var body []byte
	for _, rec := range records {
		body = append(body, rec...)
	}
	h.BodySize = uint64(len(body))
	var buf bytes.Buffer
	_, err := h.WriteTo(&buf)
	require.NoError(t, err)
	buf.Write(body)
	buf.Write(make([]byte, 4))
	return buf.Bytes()
}

func record(sc core.Scheme, uncompressed, compressed uint32, payload []byte) []byte {
	rec := []byte{byte(sc)}
	rec = binary.LittleEndian.AppendUint32(rec, uncompressed)
	rec = binary.LittleEndian.AppendUint32(rec, compressed)
	return append(rec, payload...)
}

func TestRead_RejectsOversizedCounts(t *testing.T) {
	const nc = 1 << 17
	// a single-row DDC1 group announcing 0x7fffffff tuples it does not hold
	payload := binary.LittleEndian.AppendUint32(nil, 1)
	payload = binary.LittleEndian.AppendUint32(payload, nc)
	payload = binary.LittleEndian.AppendUint32(payload, math.MaxInt32)
	for c := 0; c < nc; c++ {
		payload = binary.LittleEndian.AppendUint32(payload, uint32(c))
	}

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "dictionary",
			data: container(t, FileHeader{NumRows: 1, NumCols: nc, NumGroups: 1},
				record(core.SchemeDDC1, uint32(len(payload)), 0, payload)),
		},
		{
			name: "payload beyond matrix",
			data: container(t, FileHeader{Compression: CompressionLZ4, NumRows: 10, NumCols: 2, NumGroups: 1},
				record(core.SchemeDDC1, 1<<30, 4, []byte{1, 2, 3, 4})),
		},
		{
			name: "lz4 expansion",
			data: container(t, FileHeader{Compression: CompressionLZ4, NumRows: 1 << 20, NumCols: 1 << 10, NumGroups: 1},
				record(core.SchemeDDC1, 1<<31, 4, []byte{1, 2, 3, 4})),
		},
		{
			name: "zstd frame size",
			data: container(t, FileHeader{Compression: CompressionZSTD, NumRows: 1 << 20, NumCols: 1 << 10, NumGroups: 1},
				record(core.SchemeDDC1, 1<<31, 4, []byte{0x28, 0xb5, 0x2f, 0xfd})),
		},
		{
			name: "group count",
			data: container(t, FileHeader{NumRows: 1, NumCols: math.MaxInt32, NumGroups: math.MaxInt32}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { _, err = Read(bytes.NewReader(tt.data)) })
			assert.ErrorIs(t, err, core.ErrCorrupted)
		})
	}
}
