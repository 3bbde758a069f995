package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"article-digest/internal/app"
	"article-digest/internal/config"
	"article-digest/internal/observability/logging"
	"article-digest/internal/observability/tracing"
)

func serveCmd() *cobra.Command {
	var addr string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the web page and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.NewLogger()
			slog.SetDefault(logger)

			cfg, err := config.LoadDigestConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.HTTPAddr = addr
			}

			shutdownTracing := tracing.Init()
			defer func() { _ = shutdownTracing(cmd.Context()) }()

			pipeline, err := app.BuildPipeline(cfg, prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}
			server, err := app.NewServer(logger, cfg, pipeline, version())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx)
		},
	}
	serve.Flags().StringVar(&addr, "addr", ":8080", "listen address (overrides HTTP_ADDR)")

	return serve
}
