package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"article-digest/pkg/security/csp"
)

func serveWithHeaders(cfg CSPConfig, path string) http.Header {
	h := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Header()
}

func TestSecurityHeaders_PolicyPerPath(t *testing.T) {
	cfg := CSPConfig{
		Enabled:       true,
		DefaultPolicy: csp.StrictPolicy(),
		PathPolicies:  map[string]*csp.CSPBuilder{"/": csp.PagePolicy()},
	}

	tests := []struct {
		path string
		want string
	}{
		{"/", csp.PagePolicy().Build()},
		{"/digests", csp.StrictPolicy().Build()},
		{"/digests/abc/pdf", csp.StrictPolicy().Build()},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			hdr := serveWithHeaders(cfg, tt.path)
			if got := hdr.Get("Content-Security-Policy"); got != tt.want {
				t.Errorf("CSP = %q, want %q", got, tt.want)
			}
			if got := hdr.Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q", got)
			}
		})
	}
}

func TestSecurityHeaders_ReportOnly(t *testing.T) {
	hdr := serveWithHeaders(CSPConfig{Enabled: true, ReportOnly: true, DefaultPolicy: csp.StrictPolicy()}, "/health")

	if hdr.Get("Content-Security-Policy") != "" {
		t.Error("enforcing header set in report-only mode")
	}
	if hdr.Get("Content-Security-Policy-Report-Only") == "" {
		t.Error("report-only header missing")
	}
}

func TestSecurityHeaders_Disabled(t *testing.T) {
	hdr := serveWithHeaders(CSPConfig{Enabled: false, DefaultPolicy: csp.StrictPolicy()}, "/")

	if hdr.Get("Content-Security-Policy") != "" {
		t.Error("CSP set while disabled")
	}
	if hdr.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("nosniff must be set regardless of CSP")
	}
}
