package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"article-digest/internal/app"
	"article-digest/internal/config"
	"article-digest/internal/observability/logging"
	"article-digest/internal/observability/tracing"
)

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, logger, getVersion(), prometheus.DefaultRegisterer)
	stop()
	if err != nil {
		logger.Error("article-digest api stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled. Tracing is flushed before it returns,
// on success and on failure alike.
func run(ctx context.Context, logger *slog.Logger, version string, reg prometheus.Registerer) error {
	shutdownTracing := tracing.Init()
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracer provider", slog.Any("error", err))
		}
	}()

	cfg, err := config.LoadDigestConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.Info("configuration loaded",
		slog.String("summarizer", cfg.SummarizerType),
		slog.String("extractor", cfg.ExtractorMode),
		slog.Int("max_chunk_words", cfg.MaxChunkWords),
		slog.Duration("timeout", cfg.Timeout))

	server, err := setupServer(logger, cfg, version, reg)
	if err != nil {
		return err
	}

	logger.Info("article-digest api", slog.String("version", version))
	return server.Run(ctx)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer builds the pipeline and the HTTP server around it.
func setupServer(logger *slog.Logger, cfg *config.DigestConfig, version string, reg prometheus.Registerer) (*app.Server, error) {
	pipeline, err := app.BuildPipeline(cfg, reg)
	if err != nil {
		return nil, fmt.Errorf("build digest pipeline: %w", err)
	}

	server, err := app.NewServer(logger, cfg, pipeline, version)
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}
	return server, nil
}
