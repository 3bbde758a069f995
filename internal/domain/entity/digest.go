// Package entity defines the core domain entities of the digest pipeline.
// It contains the extracted article, the word-bounded chunks fed to the summarizer,
// the compression verdict and the finished digest, along with URL validation
// and domain-specific errors.
package entity

import (
	"strings"
	"time"
)

// Article is the flat text scraped from a web page.
// Text is always Blocks joined with a single space.
type Article struct {
	URL    string
	Title  string
	Blocks []string
	Text   string
}

// NewArticle builds an Article from extracted text blocks in document order.
func NewArticle(url, title string, blocks []string) *Article {
	return &Article{URL: url, Title: title, Blocks: blocks, Text: strings.Join(blocks, " ")}
}

// Chunk is a run of whole sentences handed to the summarizer as one unit.
type Chunk struct {
	Index int
	Text  string
	Words int
}

// Severity is the display level attached to a compression verdict.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Compression labels.
const (
	LabelGreat     = "great compression"
	LabelBalanced  = "well-balanced"
	LabelExcessive = "possibly excessive"
)

// Compression describes how much shorter the summary is than the article.
// Ratio is a percentage: 100 * words(summary) / words(article).
type Compression struct {
	Ratio    float64
	Label    string
	Severity Severity
	Message  string
}

// Digest is the result of one pipeline run.
type Digest struct {
	ID          string
	URL         string
	Article     *Article
	Chunks      []Chunk
	Summaries   []string
	Summary     string
	Compression Compression
	PDF         []byte
	CreatedAt   time.Time
	Duration    time.Duration
}
