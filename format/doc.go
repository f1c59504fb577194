// Package format implements the container file of a compressed matrix.
//
// Layout (all multi-byte fields little-endian):
//
//	[64-byte FileHeader]
//	per group: [uint8 scheme][uint32 uncompressed][uint32 compressed][payload]
//	[uint32 CRC32C over every group record]
//
// A group payload is the colgroup binary layout, optionally compressed with
// LZ4 or ZSTD. A compressed size of 0 marks a payload stored raw.
package format
