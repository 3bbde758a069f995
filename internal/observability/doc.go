// Package observability groups the logging, metrics and tracing helpers used
// by the digest pipeline and the HTTP server.
//
// Subpackages:
//   - logging: slog construction and context propagation
//   - metrics: Prometheus collectors for pipeline stages and digests
//   - tracing: OpenTelemetry tracer, provider setup and HTTP middleware
package observability
