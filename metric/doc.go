// Package metric exports compression metrics to Prometheus.
//
// Usage:
//
//	pc := metric.NewPrometheusCollector(prometheus.DefaultRegisterer, "cla")
//	m, _ := cla.Compress(ctx, src, cla.WithMetricsCollector(pc))
package metric
