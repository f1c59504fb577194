package format

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/cla/core"
)

// blockHeaderSize is [uncompressed uint32][compressed uint32].
const blockHeaderSize = 8

// An LZ4 sequence spends at least one byte per 255 bytes of match length,
// so a block expands by at most maxLZ4Ratio plus lz4Slack bytes.
const (
	maxLZ4Ratio = 255
	lz4Slack    = 64
)

// minSavings is the fraction a codec must save for the payload to be stored
// compressed.
const minSavings = 0.1

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(math.MaxUint32))
}

// encodeBlock prefixes data with a block header, compressing it with ct when
// that saves at least minSavings.
func encodeBlock(data []byte, ct CompressionType) ([]byte, error) {
	if len(data) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: block of %d bytes", core.ErrInvalidArgument, len(data))
	}

	var packed []byte
	var err error
	switch ct {
	case CompressionLZ4:
		packed, err = compressLZ4(data)
	case CompressionZSTD:
		packed, err = compressZSTD(data)
	}
	if err != nil {
		return nil, err
	}

	if len(packed) == 0 || float64(len(packed)) > float64(len(data))*(1-minSavings) {
		out := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data))) //nolint:gosec
		binary.LittleEndian.PutUint32(out[4:], 0)
		copy(out[blockHeaderSize:], data)
		return out, nil
	}

	out := make([]byte, blockHeaderSize+len(packed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))   //nolint:gosec
	binary.LittleEndian.PutUint32(out[4:], uint32(len(packed))) //nolint:gosec
	copy(out[blockHeaderSize:], packed)
	return out, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return dst[:n], nil
}

func compressZSTD(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(data, nil), nil
}

// decodeBlock restores the payload of a block whose header announced
// uncompressed bytes and whose (possibly compressed) body is packed. The
// announced size is checked against what packed can expand to before the
// output is allocated.
func decodeBlock(packed []byte, uncompressed uint32, ct CompressionType) ([]byte, error) {
	switch ct {
	case CompressionLZ4:
		if uint64(uncompressed) > maxLZ4Ratio*uint64(len(packed))+lz4Slack {
			return nil, fmt.Errorf("%w: format: lz4 block of %d bytes cannot expand to %d",
				core.ErrCorrupted, len(packed), uncompressed)
		}
		out := make([]byte, uncompressed)
		n, err := lz4.UncompressBlock(packed, out)
		if err != nil {
			return nil, fmt.Errorf("%w: format: lz4: %v", core.ErrCorrupted, err)
		}
		if uint32(n) != uncompressed { //nolint:gosec
			return nil, fmt.Errorf("%w: format: decompressed size mismatch", core.ErrCorrupted)
		}
		return out, nil

	case CompressionZSTD:
		var fh zstd.Header
		if err := fh.Decode(packed); err != nil {
			return nil, fmt.Errorf("%w: format: zstd: %v", core.ErrCorrupted, err)
		}
		if fh.HasFCS && fh.FrameContentSize != uint64(uncompressed) {
			return nil, fmt.Errorf("%w: format: zstd frame of %d bytes, block header says %d",
				core.ErrCorrupted, fh.FrameContentSize, uncompressed)
		}
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)
		var dst []byte
		if fh.HasFCS {
			dst = make([]byte, 0, uncompressed)
		}
		decoded, err := dec.DecodeAll(packed, dst)
		if err != nil {
			return nil, fmt.Errorf("%w: format: zstd: %v", core.ErrCorrupted, err)
		}
		if uint32(len(decoded)) != uncompressed { //nolint:gosec
			return nil, fmt.Errorf("%w: format: decompressed size mismatch", core.ErrCorrupted)
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("%w: format: compressed block in a file without block compression", core.ErrCorrupted)
	}
}
