package extractor

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"

	"article-digest/internal/config"
	"article-digest/internal/domain/entity"
	"article-digest/internal/observability/logging"
	"article-digest/internal/usecase/digest"
)

// ReadabilityExtractor isolates the main content of a page with Mozilla's
// Readability algorithm, then applies the h1/p rule to that content. When
// the cleaned content has no h1 or p elements, readability's plain text is
// used as a single block.
type ReadabilityExtractor struct{}

// NewReadabilityExtractor creates a ReadabilityExtractor.
func NewReadabilityExtractor() *ReadabilityExtractor {
	return &ReadabilityExtractor{}
}

// Extract implements digest.Extractor.
func (e *ReadabilityExtractor) Extract(ctx context.Context, page *digest.Page) (*entity.Article, error) {
	logger := logging.FromContext(ctx)

	pageURL, err := url.Parse(page.URL)
	if err != nil {
		// Readability only uses the URL to resolve relative links.
		pageURL = nil
	}

	article, err := readability.FromReader(strings.NewReader(page.Body), pageURL)
	if err != nil {
		// Pages readability cannot score still have headings and paragraphs.
		logger.Debug("readability failed, falling back to tag extraction",
			slog.String("url", page.URL),
			slog.Any("error", err))
		return NewTagExtractor().Extract(ctx, page)
	}

	doc, err := parse(strings.NewReader(article.Content))
	if err != nil {
		return nil, err
	}

	blocks := collectBlocks(doc.Selection)
	if len(blocks) == 0 && strings.TrimSpace(article.TextContent) != "" {
		logger.Debug("using readability text content",
			slog.String("url", page.URL),
			slog.Int("length", len(article.TextContent)))
		blocks = []string{article.TextContent}
	}

	logger.Debug("extracted article blocks",
		slog.String("mode", config.ExtractorReadability),
		slog.Int("blocks", len(blocks)))
	return entity.NewArticle(page.URL, strings.TrimSpace(article.Title), blocks), nil
}
