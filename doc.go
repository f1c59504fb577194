// Package cla compresses numeric matrices column-wise and computes directly on
// the compressed form.
//
// Columns are grouped into column groups. Each group stores the distinct value
// tuples of its columns once and references them per row through a dictionary
// code (DDC1, DDC2), per tuple through row runs (RLE) or per tuple through
// segmented offset lists (OLE). Columns that do not compress stay dense.
// Matrix-vector products, aggregates and scalar operations run per group
// without decompressing.
//
// # Quick Start
//
//	ctx := context.Background()
//	src := mat.NewDense(rows, cols, data)
//
//	m, err := cla.Compress(ctx, src)
//	if err != nil {
//	    return err
//	}
//	y, _ := m.RightMultByVector(x)         // m * x
//	fmt.Println(m.CompressionRatio(), m.Sum())
//
// # Column Groups
//
// Which columns to co-code is the caller's policy. By default every column is
// its own candidate; WithColumnGroups supplies a partition. A candidate set
// that does not compress is shrunk greedily, dropping the column with the worst
// standalone ratio first, until it compresses or becomes empty:
//
//	m, _ := cla.Compress(ctx, src,
//	    cla.WithColumnGroups([][]int{{0, 1, 2}, {3, 4}}),
//	    cla.WithParallelism(4),
//	)
//
// # Persistence
//
// A compressed matrix is written to a self-describing container with optional
// LZ4 or ZSTD block compression:
//
//	_, _ = m.WriteTo(f)
//	m2, _ := cla.ReadMatrix(ctx, f)
//
// Save replaces a file atomically and Open maps it read-only while decoding:
//
//	_ = m.Save(ctx, "matrix.cla")
//	m3, _ := cla.Open(ctx, "matrix.cla")
//
// # Packages
//
//   - bitmap: distinct-tuple extraction
//   - estim: size model and estimator
//   - colgroup: the encodings and their kernels
//   - compress: ratio-driven scheme selection and batch compression
//   - format: container file
//   - resource: worker, memory and IO limits
//   - metric: Prometheus metrics
package cla
