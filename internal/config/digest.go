// Package config assembles the application-level configuration of the
// digest pipeline from environment variables.
package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	pkgconfig "article-digest/pkg/config"
)

// Summarizer providers.
const (
	SummarizerHuggingFace = "huggingface"
	SummarizerClaude      = "claude"
	SummarizerOpenAI      = "openai"
	SummarizerNoop        = "noop"
)

// Extractor modes.
const (
	ExtractorTags        = "tags"
	ExtractorReadability = "readability"
)

// DigestConfig holds the pipeline settings shared by the CLI and the API server.
type DigestConfig struct {
	// MaxChunkWords is the chunk capacity in words. Default: 300
	MaxChunkWords int

	// SummaryMinWords and SummaryMaxWords bound each chunk summary. Defaults: 30, 120
	SummaryMinWords int
	SummaryMaxWords int

	// SummarizerType selects the provider. Default: huggingface
	SummarizerType string

	// ExtractorMode selects how article text is isolated. Default: tags
	ExtractorMode string

	// HTTPAddr is the listen address of the API server. Default: ":8080"
	HTTPAddr string

	// CacheSize bounds the number of digests kept for download. Default: 64
	CacheSize int

	// Timeout bounds one pipeline run. Default: 10m
	Timeout time.Duration

	// RateLimit is the number of digests one client may request per
	// RateWindow. Zero disables the limit. Defaults: 10 per 1m
	RateLimit  int
	RateWindow time.Duration

	// CSPEnabled sends Content-Security-Policy headers. Default: true
	// CSPReportOnly reports violations without enforcing. Default: false
	CSPEnabled    bool
	CSPReportOnly bool

	// TrustProxy lets the rate limiter read the client IP from
	// X-Forwarded-For and X-Real-IP, but only on requests whose peer is in
	// TrustedProxies. Off by default: the TCP peer address is used.
	TrustProxy     bool
	TrustedProxies []netip.Prefix
}

// LoadDigestConfig reads DigestConfig from the environment and validates it.
func LoadDigestConfig() (*DigestConfig, error) {
	cfg := &DigestConfig{
		MaxChunkWords:   pkgconfig.GetEnvInt("MAX_CHUNK_WORDS", 300),
		SummaryMinWords: pkgconfig.GetEnvInt("SUMMARY_MIN_WORDS", 30),
		SummaryMaxWords: pkgconfig.GetEnvInt("SUMMARY_MAX_WORDS", 120),
		SummarizerType:  strings.ToLower(pkgconfig.GetEnvString("SUMMARIZER_TYPE", SummarizerHuggingFace)),
		ExtractorMode:   strings.ToLower(pkgconfig.GetEnvString("EXTRACTOR_MODE", ExtractorTags)),
		HTTPAddr:        pkgconfig.GetEnvString("HTTP_ADDR", ":8080"),
		CacheSize:       pkgconfig.GetEnvInt("DIGEST_CACHE_SIZE", 64),
		Timeout:         pkgconfig.GetEnvDuration("DIGEST_TIMEOUT", 10*time.Minute),
		RateLimit:       pkgconfig.GetEnvInt("DIGEST_RATE_LIMIT", 10),
		RateWindow:      pkgconfig.GetEnvDuration("DIGEST_RATE_WINDOW", time.Minute),
		CSPEnabled:      pkgconfig.GetEnvBool("CSP_ENABLED", true),
		CSPReportOnly:   pkgconfig.GetEnvBool("CSP_REPORT_ONLY", false),
	}

	cfg.TrustProxy = pkgconfig.GetEnvBool("TRUSTED_PROXY_ENABLED", false)
	if cfg.TrustProxy {
		proxies, err := ParseProxyCIDRs(pkgconfig.GetEnvString("TRUSTED_PROXY_CIDRS", ""))
		if err != nil {
			return nil, fmt.Errorf("invalid digest configuration: TRUSTED_PROXY_CIDRS: %w", err)
		}
		cfg.TrustedProxies = proxies
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid digest configuration: %w", err)
	}
	return cfg, nil
}

// ParseProxyCIDRs parses a comma separated list of IPs and CIDR ranges.
// A bare IP becomes a single-address prefix.
func ParseProxyCIDRs(s string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(item); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("%q is neither an IP address nor a CIDR range", item)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Validate checks configuration correctness.
func (c *DigestConfig) Validate() error {
	if c.MaxChunkWords < 1 {
		return fmt.Errorf("MAX_CHUNK_WORDS must be positive, got %d", c.MaxChunkWords)
	}
	if c.SummaryMinWords < 1 {
		return fmt.Errorf("SUMMARY_MIN_WORDS must be positive, got %d", c.SummaryMinWords)
	}
	if c.SummaryMaxWords < c.SummaryMinWords {
		return fmt.Errorf("SUMMARY_MAX_WORDS (%d) must not be below SUMMARY_MIN_WORDS (%d)",
			c.SummaryMaxWords, c.SummaryMinWords)
	}

	switch c.SummarizerType {
	case SummarizerHuggingFace, SummarizerClaude, SummarizerOpenAI, SummarizerNoop:
	default:
		return fmt.Errorf("SUMMARIZER_TYPE must be one of huggingface, claude, openai, noop, got %q", c.SummarizerType)
	}

	switch c.ExtractorMode {
	case ExtractorTags, ExtractorReadability:
	default:
		return fmt.Errorf("EXTRACTOR_MODE must be tags or readability, got %q", c.ExtractorMode)
	}

	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR cannot be empty")
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("DIGEST_CACHE_SIZE must be positive, got %d", c.CacheSize)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Timeout); err != nil {
		return fmt.Errorf("DIGEST_TIMEOUT: %w", err)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("DIGEST_RATE_LIMIT cannot be negative, got %d", c.RateLimit)
	}
	if c.RateLimit > 0 {
		if err := pkgconfig.ValidatePositiveDuration(c.RateWindow); err != nil {
			return fmt.Errorf("DIGEST_RATE_WINDOW: %w", err)
		}
	}
	if c.TrustProxy && len(c.TrustedProxies) == 0 {
		return fmt.Errorf("TRUSTED_PROXY_ENABLED requires at least one entry in TRUSTED_PROXY_CIDRS")
	}
	return nil
}
