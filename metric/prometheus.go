package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/cla/core"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// PrometheusCollector records compression metrics as Prometheus counters,
// gauges and histograms. It implements cla.MetricsCollector.
type PrometheusCollector struct {
	compressTotal    *prometheus.CounterVec   // by status
	compressDuration prometheus.Histogram     // seconds
	compressRatio    prometheus.Gauge         // ratio of the last successful compression
	groupsTotal      *prometheus.CounterVec   // by scheme
	groupBytes       *prometheus.CounterVec   // by scheme
	groupColumns     *prometheus.HistogramVec // by scheme
	groupDuration    prometheus.Histogram     // seconds
	pruneTotal       prometheus.Counter
	writeTotal       *prometheus.CounterVec // by status
	writeBytes       prometheus.Counter
	writeDuration    prometheus.Histogram // seconds
}

// NewPrometheusCollector creates a collector and registers its metrics with
// reg under namespace. A nil reg leaves the metrics unregistered.
func NewPrometheusCollector(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	f := promauto.With(reg)
	return &PrometheusCollector{
		compressTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compress_total",
			Help:      "Matrix compressions by status.",
		}, []string{"status"}),
		compressDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compress_duration_seconds",
			Help:      "Duration of matrix compressions.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		compressRatio: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "compress_ratio",
			Help:      "Compression ratio of the last successful compression.",
		}),
		groupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_total",
			Help:      "Candidate column sets by chosen scheme.",
		}, []string{"scheme"}),
		groupBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_bytes_total",
			Help:      "In-memory bytes of built column groups by scheme.",
		}, []string{"scheme"}),
		groupColumns: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "group_columns",
			Help:      "Columns per candidate set by chosen scheme.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"scheme"}),
		groupDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "group_duration_seconds",
			Help:      "Duration of single candidate set compressions.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		pruneTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pruned_columns_total",
			Help:      "Columns dropped from candidate sets.",
		}),
		writeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_total",
			Help:      "Container writes by status.",
		}, []string{"status"}),
		writeBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_bytes_total",
			Help:      "Bytes written to containers.",
		}),
		writeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_duration_seconds",
			Help:      "Duration of container writes.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

// RecordCompress implements cla.MetricsCollector.
func (p *PrometheusCollector) RecordCompress(_, _, _ int, ratio float64, d time.Duration, err error) {
	p.compressTotal.WithLabelValues(status(err)).Inc()
	p.compressDuration.Observe(d.Seconds())
	if err == nil {
		p.compressRatio.Set(ratio)
	}
}

// RecordGroup implements cla.MetricsCollector.
func (p *PrometheusCollector) RecordGroup(scheme core.Scheme, numCols int, size int64, d time.Duration) {
	label := scheme.String()
	p.groupsTotal.WithLabelValues(label).Inc()
	p.groupBytes.WithLabelValues(label).Add(float64(size))
	p.groupColumns.WithLabelValues(label).Observe(float64(numCols))
	p.groupDuration.Observe(d.Seconds())
}

// RecordPrune implements cla.MetricsCollector.
func (p *PrometheusCollector) RecordPrune(int, float64) {
	p.pruneTotal.Inc()
}

// RecordWrite implements cla.MetricsCollector.
func (p *PrometheusCollector) RecordWrite(bytes int64, d time.Duration, err error) {
	p.writeTotal.WithLabelValues(status(err)).Inc()
	p.writeBytes.Add(float64(bytes))
	p.writeDuration.Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusOK
}
