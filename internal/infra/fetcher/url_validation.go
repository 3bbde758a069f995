// Package fetcher retrieves article pages over HTTP for the digest pipeline.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"article-digest/internal/usecase/digest"
)

// validateURL checks the scheme and host of urlStr and, when denyPrivateIPs
// is set, resolves the host and rejects loopback, private and link-local
// addresses (SSRF prevention). It runs for the initial URL and for every
// redirect target.
func validateURL(ctx context.Context, urlStr string, denyPrivateIPs bool) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", digest.ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme '%s' not allowed (only http/https)", digest.ErrInvalidURL, u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", digest.ErrInvalidURL)
	}

	if !denyPrivateIPs {
		return nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, hostname)
	if err != nil {
		return fmt.Errorf("%w: DNS lookup failed for %s: %v", digest.ErrInvalidURL, hostname, err)
	}

	for _, addr := range addrs {
		if isPrivateIP(addr.IP) {
			return fmt.Errorf("%w: hostname '%s' resolves to private IP %s", digest.ErrPrivateIP, hostname, addr.IP)
		}
	}
	return nil
}

// isPrivateIP reports whether ip is loopback (127.0.0.0/8, ::1), private
// (RFC 1918, fc00::/7), link-local (169.254.0.0/16, fe80::/10) or unspecified.
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsUnspecified()
}
