package text_test

import (
	"testing"

	"article-digest/internal/utils/text"
)

func TestCountRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "empty", input: "", expected: 0},
		{name: "ASCII", input: "hello world", expected: 11},
		{name: "accented", input: "café", expected: 4},
		{name: "Japanese", input: "こんにちは世界", expected: 7},
		{name: "emoji", input: "Hello👋", expected: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := text.CountRunes(tt.input); got != tt.expected {
				t.Errorf("CountRunes(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "empty", input: "", expected: 0},
		{name: "only whitespace", input: " \t\n ", expected: 0},
		{name: "single word", input: "word", expected: 1},
		{name: "sentence", input: "A cat sleeps.", expected: 3},
		{name: "repeated separators", input: "  A  cat\tsleeps.\n", expected: 3},
		{name: "punctuation glued to word", input: "end.Next", expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := text.CountWords(tt.input); got != tt.expected {
				t.Errorf("CountWords(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLeadingWords(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		n         int
		want      string
		truncated bool
	}{
		{name: "shorter than n", input: "one two", n: 5, want: "one two"},
		{name: "exactly n", input: "one two three", n: 3, want: "one two three"},
		{name: "longer than n", input: "one  two three four", n: 2, want: "one two", truncated: true},
		{name: "zero", input: "one", n: 0, want: "", truncated: true},
		{name: "negative treated as zero", input: "one", n: -1, want: "", truncated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := text.LeadingWords(tt.input, tt.n)
			if got != tt.want || truncated != tt.truncated {
				t.Errorf("LeadingWords(%q, %d) = (%q, %v), want (%q, %v)",
					tt.input, tt.n, got, truncated, tt.want, tt.truncated)
			}
		})
	}
}
