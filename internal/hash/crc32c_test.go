package hash

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSumMatchesCastagnoli(t *testing.T) {
	data := []byte("compressed column groups")
	assert.Equal(t, crc32.Checksum(data, crc32.MakeTable(crc32.Castagnoli)), Sum(data))
	assert.NotEqual(t, crc32.ChecksumIEEE(data), Sum(data))
}

func TestStreamingAgreesWithSum(t *testing.T) {
	data := []byte("0123456789abcdefghijklmnopqrstuvwxyz")

	h := New()
	_, _ = h.Write(data[:10])
	_, _ = h.Write(data[10:])
	assert.Equal(t, Sum(data), h.Sum32())
}
