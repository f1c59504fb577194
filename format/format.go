package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/internal/hash"
)

const (
	// FormatMagic identifies container files. Written little-endian it reads
	// "CLA0".
	FormatMagic = 0x30414C43

	// FormatVersion is the current container format version.
	FormatVersion uint32 = 1

	// HeaderSize is the size of the file header in bytes.
	HeaderSize = 64

	// FlagBlockCompressed indicates that group payloads may be block compressed.
	FlagBlockCompressed uint32 = 1 << 0
)

var (
	// ErrInvalidMagic is returned when a file has an invalid magic number.
	ErrInvalidMagic = fmt.Errorf("%w: format: invalid magic number", core.ErrCorrupted)

	// ErrInvalidVersion is returned when a file has an unsupported version.
	ErrInvalidVersion = fmt.Errorf("%w: format: unsupported format version", core.ErrUnsupported)

	// ErrChecksum is returned when a header or body checksum does not match.
	ErrChecksum = fmt.Errorf("%w: format: checksum mismatch", core.ErrCorrupted)
)

// CompressionType selects the block compression of group payloads.
type CompressionType uint8

const (
	// CompressionNone stores payloads raw.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD CompressionType = 2
)

// String returns the name of the compression type.
func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("CompressionType(%d)", uint8(c))
	}
}

// ParseCompressionType parses "none", "lz4" or "zstd".
func ParseCompressionType(s string) (CompressionType, error) {
	switch s {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	}
	return 0, fmt.Errorf("%w: unknown block compression %q", core.ErrInvalidArgument, s)
}

// FileHeader is the 64-byte header at the start of container files.
type FileHeader struct {
	Magic       uint32 // FormatMagic
	Version     uint32
	Flags       uint32
	Compression CompressionType
	NumRows     uint64
	NumCols     uint64
	NumGroups   uint64
	BodySize    uint64 // bytes between header and trailing checksum
	Checksum    uint32 // CRC32C of bytes [0, 56)
}

// Validate checks that the header is valid.
func (h *FileHeader) Validate() error {
	if h.Magic != FormatMagic {
		return ErrInvalidMagic
	}
	if h.Version == 0 || h.Version > FormatVersion {
		return ErrInvalidVersion
	}
	switch h.Compression {
	case CompressionNone, CompressionLZ4, CompressionZSTD:
	default:
		return fmt.Errorf("%w: format: compression type %d", core.ErrUnsupported, h.Compression)
	}
	if h.NumGroups > h.NumCols {
		return fmt.Errorf("%w: format: %d groups for %d columns", core.ErrCorrupted, h.NumGroups, h.NumCols)
	}
	return nil
}

// TotalSize returns the file size in bytes.
func (h *FileHeader) TotalSize() int64 {
	return int64(HeaderSize) + int64(h.BodySize) + 4 //nolint:gosec
}

func (h *FileHeader) encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.Flags)
	buf[12] = byte(h.Compression)
	binary.LittleEndian.PutUint64(buf[16:24], h.NumRows)
	binary.LittleEndian.PutUint64(buf[24:32], h.NumCols)
	binary.LittleEndian.PutUint64(buf[32:40], h.NumGroups)
	binary.LittleEndian.PutUint64(buf[40:48], h.BodySize)
	h.Checksum = hash.Sum(buf[:56])
	binary.LittleEndian.PutUint32(buf[56:60], h.Checksum)
	return buf
}

// WriteTo writes the header to w.
func (h *FileHeader) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(h.encode())
	return int64(n), err
}

// ReadFrom reads and validates the header from r.
func (h *FileHeader) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return int64(n), fmt.Errorf("%w: format: truncated header", core.ErrCorrupted)
		}
		return int64(n), err
	}

	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	h.Version = binary.LittleEndian.Uint32(buf[4:8])
	h.Flags = binary.LittleEndian.Uint32(buf[8:12])
	h.Compression = CompressionType(buf[12])
	h.NumRows = binary.LittleEndian.Uint64(buf[16:24])
	h.NumCols = binary.LittleEndian.Uint64(buf[24:32])
	h.NumGroups = binary.LittleEndian.Uint64(buf[32:40])
	h.BodySize = binary.LittleEndian.Uint64(buf[40:48])
	h.Checksum = binary.LittleEndian.Uint32(buf[56:60])

	if h.Magic != FormatMagic {
		return int64(n), ErrInvalidMagic
	}
	if hash.Sum(buf[:56]) != h.Checksum {
		return int64(n), ErrChecksum
	}
	return int64(n), h.Validate()
}
