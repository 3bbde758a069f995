// Package logging provides structured logging utilities with context propagation.
//
// It wraps log/slog with the helpers the rest of the application relies on:
// level selection from LOG_LEVEL, JSON or text output, request ID and trace ID
// enrichment, and carrying a logger through a context.Context.
//
//	logger := logging.New(os.Stderr, "json")
//	ctx = logging.WithLogger(ctx, logger)
//	logging.FromContext(ctx).Info("digest created", slog.String("id", id))
package logging
