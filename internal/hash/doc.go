// Package hash holds the checksum used by the container format.
//
// Every checksum is CRC32-Castagnoli (CRC32C). The standard library picks the
// SSE4.2 or ARM CRC instructions when the CPU has them, so checksumming a
// container body runs at memory speed.
//
//	sum := hash.Sum(header[:56])
//
//	h := hash.New()
//	io.Copy(h, body)
//	sum = h.Sum32()
package hash
