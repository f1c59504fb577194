package cla

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/cla/core"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// metric provides a Prometheus implementation.
//
// RecordGroup and RecordPrune are forwarded from the compressor, so a
// MetricsCollector also satisfies compress.MetricsObserver.
type MetricsCollector interface {
	// RecordCompress is called after each Compress call.
	// ratio is 0 when err is not nil.
	RecordCompress(rows, cols, groups int, ratio float64, duration time.Duration, err error)

	// RecordGroup is called once per candidate column set. scheme is
	// SchemeUncompressed when the set was left uncompressed.
	RecordGroup(scheme core.Scheme, numCols int, size int64, duration time.Duration)

	// RecordPrune is called each time a column is dropped from a candidate set.
	RecordPrune(col int, ratio float64)

	// RecordWrite is called after each container write.
	RecordWrite(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCompress(int, int, int, float64, time.Duration, error) {}
func (NoopMetricsCollector) RecordGroup(core.Scheme, int, int64, time.Duration)          {}
func (NoopMetricsCollector) RecordPrune(int, float64)                                    {}
func (NoopMetricsCollector) RecordWrite(int64, time.Duration, error)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CompressCount      atomic.Int64
	CompressErrors     atomic.Int64
	CompressTotalNanos atomic.Int64
	GroupCount         atomic.Int64
	GroupBytes         atomic.Int64
	PruneCount         atomic.Int64
	WriteCount         atomic.Int64
	WriteErrors        atomic.Int64
	WriteBytes         atomic.Int64

	schemes [core.NumSchemes]atomic.Int64
}

// RecordCompress implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompress(_, _, _ int, _ float64, duration time.Duration, err error) {
	b.CompressCount.Add(1)
	b.CompressTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CompressErrors.Add(1)
	}
}

// RecordGroup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGroup(scheme core.Scheme, _ int, size int64, _ time.Duration) {
	b.GroupCount.Add(1)
	b.GroupBytes.Add(size)
	if scheme.Valid() {
		b.schemes[scheme].Add(1)
	}
}

// RecordPrune implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPrune(int, float64) {
	b.PruneCount.Add(1)
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(bytes int64, _ time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteBytes.Add(bytes)
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		CompressCount:    b.CompressCount.Load(),
		CompressErrors:   b.CompressErrors.Load(),
		CompressAvgNanos: b.getAvgCompressNanos(),
		GroupCount:       b.GroupCount.Load(),
		GroupBytes:       b.GroupBytes.Load(),
		PruneCount:       b.PruneCount.Load(),
		WriteCount:       b.WriteCount.Load(),
		WriteErrors:      b.WriteErrors.Load(),
		WriteBytes:       b.WriteBytes.Load(),
		SchemeCounts:     make(map[string]int64),
	}
	for _, sc := range core.Schemes {
		if n := b.schemes[sc].Load(); n > 0 {
			s.SchemeCounts[sc.String()] = n
		}
	}
	return s
}

func (b *BasicMetricsCollector) getAvgCompressNanos() int64 {
	count := b.CompressCount.Load()
	if count == 0 {
		return 0
	}
	return b.CompressTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CompressCount    int64
	CompressErrors   int64
	CompressAvgNanos int64
	GroupCount       int64
	GroupBytes       int64
	PruneCount       int64
	WriteCount       int64
	WriteErrors      int64
	WriteBytes       int64
	SchemeCounts     map[string]int64 // candidate sets per chosen scheme
}
