// Package text provides small text measurement helpers shared by the pipeline,
// the summarizer adapters and the HTTP layer.
package text

import (
	"strings"
	"unicode/utf8"
)

// CountRunes counts Unicode characters rather than bytes, so "café" is 4.
// Character counts shown to users ("Article Length: N characters") use this.
func CountRunes(s string) int {
	return utf8.RuneCountInString(s)
}

// CountWords counts whitespace-delimited tokens. Runs of spaces, tabs and
// newlines count as a single separator and leading/trailing space is ignored.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// LeadingWords returns the first n whitespace-delimited words of s joined by
// single spaces, and whether s had more than n words.
func LeadingWords(s string, n int) (string, bool) {
	words := strings.Fields(s)
	if n < 0 {
		n = 0
	}
	if len(words) <= n {
		return strings.Join(words, " "), false
	}
	return strings.Join(words[:n], " "), true
}
