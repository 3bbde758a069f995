// Package extractor turns fetched HTML pages into article text.
//
// Article text is the text of every <h1> and <p> element in document order,
// HTML-unescaped and joined with single spaces. TagExtractor applies that
// rule to the whole page; ReadabilityExtractor first isolates the main
// content with go-readability.
package extractor

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"article-digest/internal/config"
	"article-digest/internal/domain/entity"
	"article-digest/internal/observability/logging"
	"article-digest/internal/usecase/digest"
)

// blockSelector selects the elements that make up the article text.
const blockSelector = "h1, p"

// New returns the extractor for mode (config.ExtractorTags or config.ExtractorReadability).
func New(mode string) (digest.Extractor, error) {
	switch mode {
	case config.ExtractorTags, "":
		return NewTagExtractor(), nil
	case config.ExtractorReadability:
		return NewReadabilityExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown extractor mode %q", mode)
	}
}

// TagExtractor extracts <h1> and <p> text from the whole document.
type TagExtractor struct{}

// NewTagExtractor creates a TagExtractor.
func NewTagExtractor() *TagExtractor {
	return &TagExtractor{}
}

// Extract implements digest.Extractor.
func (e *TagExtractor) Extract(ctx context.Context, page *digest.Page) (*entity.Article, error) {
	doc, err := parse(strings.NewReader(page.Body))
	if err != nil {
		return nil, err
	}

	blocks := collectBlocks(doc.Selection)
	logging.FromContext(ctx).Debug("extracted article blocks",
		slog.String("mode", config.ExtractorTags),
		slog.Int("blocks", len(blocks)))
	return entity.NewArticle(page.URL, documentTitle(doc), blocks), nil
}

func parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", digest.ErrExtractionFailed, err)
	}
	return doc, nil
}

// collectBlocks returns the unescaped text of every h1 and p under sel, in
// document order. Entities surviving HTML parsing (double-escaped markup
// such as "&amp;amp;") are decoded once more.
func collectBlocks(sel *goquery.Selection) []string {
	var blocks []string
	sel.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, html.UnescapeString(s.Text()))
	})
	return blocks
}

func documentTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
