// Package metrics provides the Prometheus collectors for the digest pipeline.
//
// Pipeline implements the usecase's MetricsRecorder port. Collectors are
// registered on the supplied registerer; passing prometheus.DefaultRegisterer
// exposes them on the /metrics endpoint served by promhttp.
//
//	m := metrics.NewPipeline(prometheus.DefaultRegisterer)
//	svc := digest.NewService(..., digest.WithMetrics(m))
package metrics
