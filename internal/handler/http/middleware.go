package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"article-digest/internal/handler/http/requestid"
	"article-digest/internal/handler/http/respond"
	"article-digest/internal/handler/http/responsewriter"
	"article-digest/internal/observability/logging"
)

// Logging attaches a request-scoped logger carrying request_id and trace_id
// to the context, then logs one line per completed request.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			reqLogger := logging.WithTraceID(ctx, logging.WithRequestID(ctx, logger))

			wrapped := responsewriter.Wrap(w)
			next.ServeHTTP(wrapped, r.WithContext(logging.WithLogger(ctx, reqLogger)))

			duration := time.Since(start)
			level := slog.LevelInfo
			if wrapped.StatusCode() >= 500 {
				level = slog.LevelError
			}
			reqLogger.Log(ctx, level, "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.Header.Get("User-Agent")),
				slog.Int("status", wrapped.StatusCode()),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Duration("duration", duration),
				slog.String("duration_ms", fmt.Sprintf("%.2f", duration.Seconds()*1000)),
			)
		})
	}
}

// Recover turns a handler panic into a 500 response and logs the stack.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic recovered",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				respond.SafeError(w, http.StatusInternalServerError, errors.New("internal error"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimitRequestBody caps request bodies at maxBytes.
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// requestRecord holds the request timestamps of one client inside the window.
// A record removed by Cleanup is marked deleted so that a request holding a
// stale pointer to it starts over with the record now in the map.
type requestRecord struct {
	timestamps []time.Time
	deleted    bool
	mu         sync.Mutex
}

// RateLimiter is a per client IP sliding window limiter. Every pipeline run
// costs one summarization call per chunk, so runs are limited per client.
type RateLimiter struct {
	records     sync.Map // map[string]*requestRecord
	limit       int
	window      time.Duration
	ipExtractor IPExtractor
	now         func() time.Time
}

// NewRateLimiter allows limit requests per window for each client IP as
// reported by extractor. A nil extractor means RemoteAddrExtractor.
func NewRateLimiter(limit int, window time.Duration, extractor IPExtractor) *RateLimiter {
	if extractor == nil {
		extractor = RemoteAddrExtractor{}
	}
	return &RateLimiter{limit: limit, window: window, ipExtractor: extractor, now: time.Now}
}

// Limit answers 429 with Retry-After once a client exceeds the limit.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := rl.ipExtractor.ExtractIP(r)
		if err != nil {
			logging.FromContext(r.Context()).Warn("rate limiter: client IP unavailable, using RemoteAddr",
				slog.String("remote_addr", r.RemoteAddr),
				slog.Any("error", err))
			ip = r.RemoteAddr
		}
		allowed, retryAfter := rl.allow(ip)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		if !allowed {
			seconds := int(retryAfter.Seconds())
			if retryAfter%time.Second != 0 {
				seconds++
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			logging.FromContext(r.Context()).Warn("rate limit exceeded", slog.String("ip", ip))
			respond.JSON(w, http.StatusTooManyRequests, respond.ErrorBody{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allow records a request for ip when permitted. Otherwise it reports how
// long until the oldest request leaves the window.
func (rl *RateLimiter) allow(ip string) (bool, time.Duration) {
	now := rl.now()

	record := rl.lockRecord(ip)
	defer record.mu.Unlock()

	cutoff := now.Add(-rl.window)
	valid := record.timestamps[:0]
	for _, ts := range record.timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}
	record.timestamps = valid

	if len(record.timestamps) >= rl.limit {
		return false, record.timestamps[0].Sub(cutoff)
	}
	record.timestamps = append(record.timestamps, now)
	return true, 0
}

// lockRecord returns the live record for ip with its mutex held.
func (rl *RateLimiter) lockRecord(ip string) *requestRecord {
	for {
		val, _ := rl.records.LoadOrStore(ip, &requestRecord{
			timestamps: make([]time.Time, 0, rl.limit),
		})
		record := val.(*requestRecord)
		record.mu.Lock()
		if !record.deleted {
			return record
		}
		record.mu.Unlock()
	}
}

// Cleanup drops clients without requests in the last window.
func (rl *RateLimiter) Cleanup() int {
	cutoff := rl.now().Add(-rl.window)
	removed := 0
	rl.records.Range(func(key, value any) bool {
		record := value.(*requestRecord)
		record.mu.Lock()
		defer record.mu.Unlock()
		stale := len(record.timestamps) == 0 || !record.timestamps[len(record.timestamps)-1].After(cutoff)
		if stale && rl.records.CompareAndDelete(key, record) {
			record.deleted = true
			removed++
		}
		return true
	})
	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (rl *RateLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Cleanup(); n > 0 {
				slog.Debug("rate limit records cleaned", slog.Int("removed", n))
			}
		}
	}
}
