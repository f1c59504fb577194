package hash

import (
	"hash"
	"hash/crc32"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Sum returns the CRC32-Castagnoli checksum of data.
func Sum(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// New returns a streaming CRC32-Castagnoli hash.
func New() hash.Hash32 {
	return crc32.New(castagnoli)
}
