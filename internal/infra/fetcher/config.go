package fetcher

import (
	"fmt"
	"time"

	pkgconfig "article-digest/pkg/config"
)

// Config holds the configuration for fetching article pages.
type Config struct {
	// Timeout is the maximum duration of a single HTTP request, redirects included.
	// Default: 30s
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes. It is enforced
	// while reading, not taken from Content-Length.
	// Default: 10485760 (10MB)
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirects to follow. Every
	// redirect target is validated again.
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs rejects hosts resolving to loopback, private or
	// link-local addresses. Should always be true in production.
	// Default: true
	DenyPrivateIPs bool

	// UserAgent is sent with every request.
	// Default: "ArticleDigestBot/1.0"
	UserAgent string
}

// DefaultConfig returns the default configuration for page fetching.
func DefaultConfig() Config {
	return Config{
		Timeout:        30 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "ArticleDigestBot/1.0",
	}
}

// Validate checks if the configuration values are valid and safe.
func (c *Config) Validate() error {
	if err := pkgconfig.ValidateDurationRange(c.Timeout, time.Second, 5*time.Minute); err != nil {
		return fmt.Errorf("PAGE_FETCH_TIMEOUT: %w", err)
	}

	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	return nil
}

// LoadConfigFromEnv loads configuration from environment variables and validates it.
//
// Environment variables:
//   - PAGE_FETCH_TIMEOUT: duration, e.g. "30s"
//   - PAGE_FETCH_MAX_BODY_SIZE: bytes
//   - PAGE_FETCH_MAX_REDIRECTS: integer
//   - PAGE_FETCH_DENY_PRIVATE_IPS: boolean
//   - PAGE_FETCH_USER_AGENT: string
func LoadConfigFromEnv() (Config, error) {
	def := DefaultConfig()
	cfg := Config{
		Timeout:        pkgconfig.GetEnvDuration("PAGE_FETCH_TIMEOUT", def.Timeout),
		MaxBodySize:    int64(pkgconfig.GetEnvInt("PAGE_FETCH_MAX_BODY_SIZE", int(def.MaxBodySize))),
		MaxRedirects:   pkgconfig.GetEnvInt("PAGE_FETCH_MAX_REDIRECTS", def.MaxRedirects),
		DenyPrivateIPs: pkgconfig.GetEnvBool("PAGE_FETCH_DENY_PRIVATE_IPS", def.DenyPrivateIPs),
		UserAgent:      pkgconfig.GetEnvString("PAGE_FETCH_USER_AGENT", def.UserAgent),
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid page fetch configuration: %w", err)
	}
	return cfg, nil
}
