package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"article-digest/internal/observability/logging"
	"article-digest/internal/resilience/circuitbreaker"
	"article-digest/internal/resilience/retry"
	"article-digest/internal/usecase/digest"
)

// HTTPFetcher implements digest.PageFetcher over net/http.
//
// Every attempt goes through a circuit breaker; attempts are retried on
// transient failures (network timeouts, 5xx, 429, 408). The body is size
// limited and read as UTF-8 unless the server or the document declares
// another charset.
//
// HTTPFetcher is safe for concurrent use.
type HTTPFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

// NewHTTPFetcher creates an HTTPFetcher with the given configuration.
func NewHTTPFetcher(config Config) *HTTPFetcher {
	cbConfig := circuitbreaker.PageFetchConfig()
	cbConfig.IsSuccessful = countsAsHealthy

	f := &HTTPFetcher{
		circuitBreaker: circuitbreaker.New(cbConfig),
		retryConfig:    retry.PageFetchConfig(),
		config:         config,
	}

	f.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", digest.ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.Context(), req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
	return f
}

// Fetch downloads the page at urlStr.
func (f *HTTPFetcher) Fetch(ctx context.Context, urlStr string) (*digest.Page, error) {
	if err := validateURL(ctx, urlStr, f.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	start := time.Now()
	var page *digest.Page
	err := retry.WithBackoff(ctx, f.retryConfig, func() error {
		var err error
		page, err = circuitbreaker.Do(f.circuitBreaker, func() (*digest.Page, error) {
			return f.doFetch(ctx, urlStr)
		})
		if circuitbreaker.IsRejected(err) {
			logging.FromContext(ctx).Warn("page fetch circuit breaker open, request rejected",
				slog.String("url", urlStr),
				slog.String("state", f.circuitBreaker.State().String()))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug("page fetched",
		slog.String("url", page.URL),
		slog.String("content_type", page.ContentType),
		slog.Int("bytes", len(page.Body)),
		slog.Duration("duration", time.Since(start)))
	return page, nil
}

// countsAsHealthy keeps failures caused by the requested page itself (404,
// oversized body, redirect loops, unknown hosts) from opening the breaker
// shared by every request. Only transient failures count against it.
func countsAsHealthy(err error) bool {
	return err == nil || !retry.IsRetryable(err)
}

// CircuitBreaker exposes the fetcher's breaker for health reporting.
func (f *HTTPFetcher) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return f.circuitBreaker
}

func (f *HTTPFetcher) doFetch(ctx context.Context, urlStr string) (*digest.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", digest.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			if urlErr.Timeout() && ctx.Err() == nil {
				return nil, fmt.Errorf("%w: request exceeded %v: %w", digest.ErrTimeout, f.config.Timeout, urlErr)
			}
			// Redirect policy errors carry our sentinels.
			if errors.Is(urlErr.Err, digest.ErrTooManyRedirects) ||
				errors.Is(urlErr.Err, digest.ErrPrivateIP) ||
				errors.Is(urlErr.Err, digest.ErrInvalidURL) {
				return nil, urlErr.Err
			}
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(raw)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: response exceeds limit of %d bytes", digest.ErrBodyTooLarge, f.config.MaxBodySize)
	}

	contentType := resp.Header.Get("Content-Type")
	finalURL := urlStr
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &digest.Page{
		URL:         finalURL,
		ContentType: contentType,
		Body:        decodeBody(raw, contentType),
	}, nil
}

// prescanBytes is how much of a document is searched for a meta charset.
const prescanBytes = 1024

// decodeBody converts raw to UTF-8. A charset declared by a byte order mark,
// the Content-Type header or a meta tag is honored; anything else is read as
// UTF-8. Undecodable bytes are replaced with U+FFFD.
func decodeBody(raw []byte, contentType string) string {
	var label string
	if _, name, certain := charset.DetermineEncoding(raw, contentType); certain {
		label = name
	} else {
		label = metaCharset(raw)
	}

	if label != "" && label != "utf-8" {
		if r, err := charset.NewReaderLabel(label, bytes.NewReader(raw)); err == nil {
			if decoded, err := io.ReadAll(r); err == nil {
				raw = decoded
			}
		}
	}
	return strings.TrimPrefix(strings.ToValidUTF8(string(raw), "\uFFFD"), "\uFEFF")
}

// metaCharset returns the charset named by a <meta charset> or
// <meta http-equiv="Content-Type"> tag near the start of the document.
func metaCharset(raw []byte) string {
	if len(raw) > prescanBytes {
		raw = raw[:prescanBytes]
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	if cs, ok := doc.Find("meta[charset]").First().Attr("charset"); ok {
		return strings.ToLower(strings.TrimSpace(cs))
	}

	var label string
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(s.AttrOr("http-equiv", "")), "content-type") {
			return true
		}
		if _, params, err := mime.ParseMediaType(s.AttrOr("content", "")); err == nil {
			label = strings.ToLower(strings.TrimSpace(params["charset"]))
		}
		return label == ""
	})
	return label
}
