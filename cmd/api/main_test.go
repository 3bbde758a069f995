package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// assertTracingShutDown checks that the global provider installed by run no
// longer records spans.
func assertTracingShutDown(t *testing.T) {
	t.Helper()
	_, span := otel.Tracer("test").Start(context.Background(), "after-run")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid(), "tracer provider still active after run returned")
}

func TestRun_InvalidConfigReturnsError(t *testing.T) {
	t.Setenv("MAX_CHUNK_WORDS", "0")

	err := run(context.Background(), discardLogger(), "test", prometheus.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load configuration")
	assertTracingShutDown(t)
}

func TestRun_MissingCredentialsReturnsError(t *testing.T) {
	t.Setenv("SUMMARIZER_TYPE", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "")

	err := run(context.Background(), discardLogger(), "test", prometheus.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build digest pipeline")
	assertTracingShutDown(t)
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Setenv("SUMMARIZER_TYPE", "noop")
	t.Setenv("HTTP_ADDR", "127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, discardLogger(), "test", prometheus.NewRegistry())
	assert.NoError(t, err)
	assertTracingShutDown(t)
}
