// Package http provides the HTTP server plumbing of the digest service:
// health and liveness endpoints, Prometheus request metrics, and the
// logging, recovery, body limit, rate limit and timeout middleware. Route
// handlers live in the digest and web subpackages.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy", "degraded" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // RFC 3339
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Breaker is a circuit breaker guarding an upstream dependency.
type Breaker interface {
	Name() string
	State() gobreaker.State
}

// CacheStats reports digest cache occupancy.
type CacheStats interface {
	Len() int
	Capacity() int
}

// HealthHandler reports upstream circuit breaker states and cache usage.
// An open breaker marks the service degraded: it still answers, but runs
// depending on that upstream fail fast until the breaker half-opens.
type HealthHandler struct {
	Version  string
	Breakers []Breaker
	Cache    CacheStats
}

// ServeHTTP returns 200 for healthy or degraded, 503 when no upstream is usable.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]CheckStatus)
	open := 0

	for _, b := range h.Breakers {
		state := b.State()
		check := CheckStatus{Status: "healthy", Details: map[string]any{"state": state.String()}}
		if state == gobreaker.StateOpen {
			check.Status = "degraded"
			check.Message = "circuit open, requests are rejected"
			open++
		}
		checks["circuit_"+b.Name()] = check
	}

	if h.Cache != nil {
		checks["cache"] = CheckStatus{
			Status: "healthy",
			Details: map[string]any{
				"entries":  h.Cache.Len(),
				"capacity": h.Cache.Capacity(),
			},
		}
	}

	status, code := "healthy", http.StatusOK
	switch {
	case open > 0 && open == len(h.Breakers):
		status, code = "unhealthy", http.StatusServiceUnavailable
	case open > 0:
		status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}); err != nil {
		slog.Error("health: failed to encode response", slog.Any("error", err))
	}
}

// LiveHandler answers liveness probes.
type LiveHandler struct{}

// ServeHTTP always returns 200 "alive".
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		slog.Error("alive: failed to write response", slog.Any("error", err))
	}
}
