package cla

import (
	"context"
	"io"
	"time"

	"github.com/hupe1980/cla/format"
	"github.com/hupe1980/cla/internal/fs"
	"github.com/hupe1980/cla/internal/mmap"
)

// Write writes m as a container file to w, with the block compression set by
// WithBlockCompression and throttled by the resource controller, if any.
func (m *Matrix) Write(ctx context.Context, w io.Writer) (int64, error) {
	start := time.Now()
	n, err := format.Write(ctx, w, m.rows, m.cols, m.groups, format.Options{
		Compression: m.opts.blockCompression,
		Parallelism: m.opts.parallelism,
		Resource:    m.opts.resource,
	})
	m.opts.logger.LogWrite(ctx, n, err)
	m.opts.metricsCollector.RecordWrite(n, time.Since(start), err)
	return n, err
}

// WriteTo implements io.WriterTo.
func (m *Matrix) WriteTo(w io.Writer) (int64, error) {
	return m.Write(context.Background(), w)
}

// Save writes m to the file at path. The file is replaced atomically: on error
// a previous file at path is left as it was.
func (m *Matrix) Save(ctx context.Context, path string) error {
	return m.save(ctx, fs.Default, path)
}

func (m *Matrix) save(ctx context.Context, fsys fs.FileSystem, path string) error {
	return fs.WriteAtomic(fsys, path, 0o644, func(w io.Writer) error {
		_, err := m.Write(ctx, w)
		return err
	})
}

// Open reads the container file at path, mapping it into memory for the
// duration of the read.
func Open(ctx context.Context, path string, optFns ...Option) (*Matrix, error) {
	mf, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer mf.Close()
	_ = mf.Advise(mmap.AccessSequential)
	return ReadMatrix(ctx, mf.Reader(), optFns...)
}

// ReadMatrix reads a container file written by Matrix.Write. The returned
// matrix writes with the block compression of the file; options selecting
// how columns are compressed have no effect.
func ReadMatrix(ctx context.Context, r io.Reader, optFns ...Option) (*Matrix, error) {
	o := applyOptions(optFns)
	m, err := readMatrix(r, &o)
	groups := 0
	if err == nil {
		groups = len(m.groups)
	}
	o.logger.LogRead(ctx, groups, err)
	return m, err
}

func readMatrix(r io.Reader, o *options) (*Matrix, error) {
	f, err := format.Read(r)
	if err != nil {
		return nil, err
	}
	o.blockCompression = f.Header.Compression
	return newMatrix(int(f.Header.NumRows), int(f.Header.NumCols), f.Groups, o) //nolint:gosec
}
