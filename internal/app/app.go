// Package app wires the digest pipeline and the HTTP server from
// configuration. Both cmd/api and the serve command of cmd/digest start
// the server through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"article-digest/internal/config"
	hhttp "article-digest/internal/handler/http"
	hdigest "article-digest/internal/handler/http/digest"
	"article-digest/internal/handler/http/requestid"
	"article-digest/internal/handler/http/web"
	"article-digest/internal/infra/cache"
	"article-digest/internal/infra/extractor"
	"article-digest/internal/infra/fetcher"
	"article-digest/internal/infra/renderer"
	"article-digest/internal/infra/summarizer"
	"article-digest/internal/observability/metrics"
	"article-digest/internal/observability/tracing"
	"article-digest/internal/resilience/circuitbreaker"
	"article-digest/internal/usecase/digest"
	"article-digest/pkg/security/csp"
)

const (
	// maxRequestBody bounds JSON and form submissions.
	maxRequestBody = 1 << 20

	// requestSlack is added to the pipeline timeout for the server-wide
	// request timeout so the pipeline deadline fires first.
	requestSlack = 30 * time.Second

	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Minute
)

// Pipeline holds the digest service and the collaborators the HTTP layer
// reports on.
type Pipeline struct {
	Service  *digest.Service
	Breakers []hhttp.Breaker
}

// breakerSource is implemented by adapters guarded by a circuit breaker.
type breakerSource interface {
	CircuitBreaker() *circuitbreaker.CircuitBreaker
}

// BuildPipeline creates the fetcher, extractor, chunker, summarizer and
// renderer from the environment and assembles them into a digest Service.
// Pipeline metrics are registered with reg.
func BuildPipeline(cfg *config.DigestConfig, reg prometheus.Registerer) (*Pipeline, error) {
	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	pageFetcher := fetcher.NewHTTPFetcher(fetchCfg)

	ext, err := extractor.New(cfg.ExtractorMode)
	if err != nil {
		return nil, err
	}

	chunker, err := digest.NewChunker(cfg.MaxChunkWords)
	if err != nil {
		return nil, err
	}

	sumCfg, err := summarizer.LoadConfigFromEnv(cfg)
	if err != nil {
		return nil, err
	}
	sum, err := summarizer.New(sumCfg)
	if err != nil {
		return nil, fmt.Errorf("create summarizer: %w", err)
	}

	svc := digest.NewService(pageFetcher, ext, chunker, sum,
		renderer.NewPDF(renderer.DefaultConfig()),
		digest.WithMetrics(metrics.NewPipeline(reg)))

	breakers := []hhttp.Breaker{pageFetcher.CircuitBreaker()}
	if src, ok := sum.(breakerSource); ok {
		breakers = append(breakers, src.CircuitBreaker())
	}

	return &Pipeline{Service: svc, Breakers: breakers}, nil
}

// Server is a configured HTTP server plus the background work tied to it.
type Server struct {
	srv     *http.Server
	limiter *hhttp.RateLimiter
	logger  *slog.Logger
}

// NewServer builds the routes and middleware chain for cfg.
func NewServer(logger *slog.Logger, cfg *config.DigestConfig, p *Pipeline, version string) (*Server, error) {
	store, err := cache.NewDigestCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	var limiter *hhttp.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = hhttp.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, ipExtractor(cfg))
		logger.Info("rate limiting enabled",
			slog.Int("limit", cfg.RateLimit),
			slog.Duration("window", cfg.RateWindow),
			slog.Bool("trust_proxy", cfg.TrustProxy))
	}

	mux := setupRoutes(cfg, p, store, limiter, version)
	handler := applyMiddleware(logger, mux, cspConfig(cfg), cfg.Timeout+requestSlack)

	return &Server{
		srv: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		},
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// setupRoutes registers the JSON API, the web form and the operational endpoints.
func setupRoutes(cfg *config.DigestConfig, p *Pipeline, store *cache.DigestCache, limiter *hhttp.RateLimiter, version string) *http.ServeMux {
	var guard func(http.Handler) http.Handler
	if limiter != nil {
		guard = limiter.Limit
	}

	mux := http.NewServeMux()
	hdigest.Register(mux, p.Service, store, cfg.Timeout, guard)
	web.Register(mux, web.Handler{Svc: p.Service, Store: store, Timeout: cfg.Timeout}, guard)

	mux.Handle("GET /health", &hhttp.HealthHandler{Version: version, Breakers: p.Breakers, Cache: store})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	return mux
}

// ipExtractor reads forwarding headers only when trusted proxies are configured.
func ipExtractor(cfg *config.DigestConfig) hhttp.IPExtractor {
	if cfg.TrustProxy {
		return hhttp.NewTrustedProxyExtractor(cfg.TrustedProxies)
	}
	return hhttp.RemoteAddrExtractor{}
}

// cspConfig gives the HTML form its own policy and everything else the strict one.
func cspConfig(cfg *config.DigestConfig) hhttp.CSPConfig {
	return hhttp.CSPConfig{
		Enabled:       cfg.CSPEnabled,
		ReportOnly:    cfg.CSPReportOnly,
		DefaultPolicy: csp.StrictPolicy(),
		PathPolicies:  map[string]*csp.CSPBuilder{"/": csp.PagePolicy()},
	}
}

// applyMiddleware wraps the handler with the middleware chain.
// Order: Request ID → Tracing → Logging → Recovery → Metrics → Security headers → Body Limit → Timeout
func applyMiddleware(logger *slog.Logger, handler http.Handler, cspCfg hhttp.CSPConfig, timeout time.Duration) http.Handler {
	chain := handler

	// Apply in reverse order (innermost to outermost)
	chain = hhttp.Timeout(timeout)(chain)
	chain = hhttp.LimitRequestBody(maxRequestBody)(chain)
	chain = hhttp.SecurityHeaders(cspCfg)(chain)
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)

	return chain
}

// Run serves until ctx is cancelled, then shuts down gracefully. The rate
// limiter cleanup runs alongside and stops with the server.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	s.srv.BaseContext = func(_ net.Listener) context.Context { return ctx }

	g.Go(func() error {
		s.logger.Info("server starting", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	if s.limiter != nil {
		g.Go(func() error {
			s.limiter.RunCleanup(ctx, cleanupInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}
