package cla

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/cla/bitmap"
	"github.com/hupe1980/cla/codec"
	"github.com/hupe1980/cla/compress"
	"github.com/hupe1980/cla/format"
	"github.com/hupe1980/cla/resource"
)

type options struct {
	columnGroups     [][]int
	parallelism      int
	denseEstimate    bool
	schemes          compress.SchemeSet
	zero             bitmap.ZeroPolicy
	targetRows       int
	resource         *resource.Controller
	blockCompression format.CompressionType
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Compress and ReadMatrix.
type Option func(*options)

// WithColumnGroups sets the candidate column sets to compress, one group per
// set. Sets must be disjoint; columns outside every set are stored
// uncompressed.
//
// Without this option every column is its own candidate set. Choosing which
// columns to co-code is left to the caller.
//
// Example:
//
//	m, _ := cla.Compress(ctx, src, cla.WithColumnGroups([][]int{{0, 3}, {1}, {2, 4, 5}}))
func WithColumnGroups(groups [][]int) Option {
	return func(o *options) {
		o.columnGroups = groups
	}
}

// WithParallelism sets how many candidate sets are compressed concurrently
// and how many row blocks matrix operations use. 1 runs everything on the
// calling goroutine. Values below 1 select GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.parallelism = n
	}
}

// WithDenseEstimate sizes the uncompressed baseline as a dense matrix instead
// of measuring sparsity.
func WithDenseEstimate(dense bool) Option {
	return func(o *options) {
		o.denseEstimate = dense
	}
}

// WithSchemes restricts the encodings the compressor may choose. Disabling
// every scheme leaves the whole matrix uncompressed.
func WithSchemes(ddc, rle, ole bool) Option {
	return func(o *options) {
		var set compress.SchemeSet
		if ddc {
			set |= compress.EnableDDC
		}
		if rle {
			set |= compress.EnableRLE
		}
		if ole {
			set |= compress.EnableOLE
		}
		o.schemes = set
	}
}

// WithZeroTuple selects how all-zero rows are represented during extraction.
func WithZeroTuple(p bitmap.ZeroPolicy) Option {
	return func(o *options) {
		o.zero = p
	}
}

// WithTargetRows sizes the uncompressed baseline of the ratio for n rows
// instead of the row count of the source matrix.
func WithTargetRows(n int) Option {
	return func(o *options) {
		o.targetRows = n
	}
}

// WithResourceController bounds worker slots and bitmap memory during
// compression and throttles container writes.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers:         4,
//	    MemoryLimitBytes:   1 << 30,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//	m, _ := cla.Compress(ctx, src, cla.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resource = rc
	}
}

// WithBlockCompression selects the block compression of container files.
func WithBlockCompression(ct format.CompressionType) Option {
	return func(o *options) {
		o.blockCompression = ct
	}
}

// WithCodec configures the codec used by Matrix.MarshalReport.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &cla.BasicMetricsCollector{}
//	m, _ := cla.Compress(ctx, src, cla.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("groups: %d, pruned: %d\n", stats.GroupCount, stats.PruneCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := cla.NewJSONLogger(slog.LevelDebug)
//	m, _ := cla.Compress(ctx, src, cla.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		parallelism:      runtime.GOMAXPROCS(0),
		schemes:          compress.AllSchemes,
		zero:             bitmap.ZeroImplicit,
		blockCompression: format.CompressionLZ4,
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
