package digest

import (
	"context"

	"article-digest/internal/domain/entity"
)

// Page is a fetched HTML document.
type Page struct {
	// URL is the final URL after redirects.
	URL         string
	ContentType string
	// Body is the document decoded as UTF-8.
	Body string
}

// PageFetcher retrieves a web page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Extractor turns a fetched page into article text.
type Extractor interface {
	Extract(ctx context.Context, page *Page) (*entity.Article, error)
}

// Summarizer is an interface for abstractive summarization of a single chunk.
// Implementations must be safe for concurrent use.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Renderer lays the summary out as a document.
type Renderer interface {
	Render(ctx context.Context, text string) ([]byte, error)
}

// MetricsRecorder receives pipeline measurements.
type MetricsRecorder interface {
	ObserveStage(stage string, seconds float64, failed bool)
	ObserveDigest(chunks int, ratio float64, label string)
	RecordRun(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveStage(string, float64, bool) {}
func (noopMetrics) ObserveDigest(int, float64, string) {}
func (noopMetrics) RecordRun(string)                   {}
