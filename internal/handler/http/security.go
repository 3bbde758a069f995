package http

import (
	"net/http"

	"article-digest/pkg/security/csp"
)

// CSPConfig selects the Content-Security-Policy sent for each path.
type CSPConfig struct {
	Enabled    bool
	ReportOnly bool

	// DefaultPolicy applies to every path without an entry in PathPolicies.
	DefaultPolicy *csp.CSPBuilder

	// PathPolicies maps exact request paths to their policy.
	PathPolicies map[string]*csp.CSPBuilder
}

type builtPolicy struct {
	header string
	value  string
}

func buildPolicy(b *csp.CSPBuilder, reportOnly bool) *builtPolicy {
	if b == nil {
		return nil
	}
	b.ReportOnly(reportOnly)
	value := b.Build()
	if value == "" {
		return nil
	}
	return &builtPolicy{header: b.HeaderName(), value: value}
}

// SecurityHeaders sets X-Content-Type-Options and, when enabled, the CSP
// for the request path. Policies are rendered once here.
func SecurityHeaders(cfg CSPConfig) func(http.Handler) http.Handler {
	var (
		fallback *builtPolicy
		paths    = make(map[string]*builtPolicy, len(cfg.PathPolicies))
	)
	if cfg.Enabled {
		fallback = buildPolicy(cfg.DefaultPolicy, cfg.ReportOnly)
		for path, b := range cfg.PathPolicies {
			paths[path] = buildPolicy(b, cfg.ReportOnly)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")

			policy, ok := paths[r.URL.Path]
			if !ok {
				policy = fallback
			}
			if policy != nil {
				w.Header().Set(policy.header, policy.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
