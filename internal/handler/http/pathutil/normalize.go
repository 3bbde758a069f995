// Package pathutil normalizes request paths for metric labels and parses
// path identifiers.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern maps a dynamic route to its label template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

const uuidPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

// pathPatterns is evaluated in order.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/digests/` + uuidPattern + `$`), Template: "/digests/:id"},
	{Pattern: regexp.MustCompile(`^/digests/` + uuidPattern + `/pdf$`), Template: "/digests/:id/pdf"},
	{Pattern: regexp.MustCompile(`^/digests/[^/]+$`), Template: "/digests/:invalid"},
	{Pattern: regexp.MustCompile(`^/digests/[^/]+/pdf$`), Template: "/digests/:invalid/pdf"},
}

// knownStatic lists routes that are reported as-is.
var knownStatic = map[string]bool{
	"/":        true,
	"/digests": true,
	"/health":  true,
	"/live":    true,
	"/metrics": true,
}

// NormalizePath converts a request path into a bounded metrics label.
//
//	NormalizePath("/digests/0b9c...e1")      // "/digests/:id"
//	NormalizePath("/digests/0b9c...e1/pdf")  // "/digests/:id/pdf"
//	NormalizePath("/health")                 // "/health"
//	NormalizePath("/wp-login.php")           // "other"
//
// Unknown paths collapse to "other" so scanners cannot grow the label set.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	if knownStatic[path] {
		return path
	}
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return "other"
}

// GetExpectedCardinality returns the number of distinct labels NormalizePath can produce.
func GetExpectedCardinality() int {
	return len(knownStatic) + len(pathPatterns) + 1
}
