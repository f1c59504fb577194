// Package mmap maps container files read-only into memory.
//
//	m, err := mmap.Open("matrix.cla")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	f, err := format.Read(m.Reader())
//
// On unix systems the file is mapped with mmap(2) and access hints go to
// madvise(2). Elsewhere the file is read into a heap buffer and hints are
// ignored, so callers never branch on the platform.
//
// Bytes and Reader views are valid only until Close. Close is idempotent.
package mmap
