// Package tracing provides OpenTelemetry tracing integration.
//
// The digest service opens one span per pipeline stage under a "digest.Run"
// root span; the HTTP middleware opens the server span that parents it.
//
//	shutdown := tracing.Init()
//	defer func() { _ = shutdown(context.Background()) }()
//
//	ctx, span := tracing.GetTracer().Start(ctx, "operation-name")
//	defer span.End()
package tracing
