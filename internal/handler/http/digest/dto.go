// Package digest provides the JSON endpoints that run the digest pipeline
// and serve cached results.
package digest

import (
	"time"

	"article-digest/internal/domain/entity"
	"article-digest/internal/utils/text"
)

// DTO is the JSON representation of a finished digest.
type DTO struct {
	ID             string         `json:"id" example:"6f1c1a8e-4f7b-4b9e-9d7e-2f3c6f0b1a2d"`
	URL            string         `json:"url" example:"https://example.com/post"`
	Title          string         `json:"title,omitempty"`
	Article        string         `json:"article"`
	ArticleLength  int            `json:"article_length"`
	ArticleWords   int            `json:"article_words"`
	Summary        string         `json:"summary"`
	SummaryLength  int            `json:"summary_length"`
	SummaryWords   int            `json:"summary_words"`
	Chunks         int            `json:"chunks"`
	ChunkSummaries []string       `json:"chunk_summaries"`
	Compression    CompressionDTO `json:"compression"`
	PDFURL         string         `json:"pdf_url" example:"/digests/6f1c1a8e-4f7b-4b9e-9d7e-2f3c6f0b1a2d/pdf"`
	CreatedAt      time.Time      `json:"created_at"`
	DurationMS     int64          `json:"duration_ms"`
}

// CompressionDTO is the graded compression ratio.
type CompressionDTO struct {
	Ratio    float64 `json:"ratio" example:"18"`
	Label    string  `json:"label" example:"great compression"`
	Severity string  `json:"severity" example:"success"`
	Message  string  `json:"message"`
}

// ToDTO converts a digest. Lengths are in characters, as shown to readers.
func ToDTO(d *entity.Digest) DTO {
	out := DTO{
		ID:             d.ID,
		URL:            d.URL,
		Summary:        d.Summary,
		SummaryLength:  text.CountRunes(d.Summary),
		SummaryWords:   text.CountWords(d.Summary),
		Chunks:         len(d.Chunks),
		ChunkSummaries: d.Summaries,
		Compression: CompressionDTO{
			Ratio:    d.Compression.Ratio,
			Label:    d.Compression.Label,
			Severity: string(d.Compression.Severity),
			Message:  d.Compression.Message,
		},
		PDFURL:     PDFPath(d.ID),
		CreatedAt:  d.CreatedAt,
		DurationMS: d.Duration.Milliseconds(),
	}
	if out.ChunkSummaries == nil {
		out.ChunkSummaries = []string{}
	}
	if d.Article != nil {
		out.Title = d.Article.Title
		out.Article = d.Article.Text
		out.ArticleLength = text.CountRunes(d.Article.Text)
		out.ArticleWords = text.CountWords(d.Article.Text)
	}
	return out
}

// PDFPath is the download path of a cached digest.
func PDFPath(id string) string {
	return "/digests/" + id + "/pdf"
}
