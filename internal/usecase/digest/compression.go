package digest

import (
	"fmt"
	"math"
	"strings"

	"article-digest/internal/domain/entity"
	"article-digest/internal/utils/text"
)

// Compression thresholds, in percent. Both bounds belong to the balanced band.
const (
	greatBelow     = 20.0
	excessiveAbove = 40.0
)

// Aggregate joins per-chunk summaries, in chunk order, with single spaces.
func Aggregate(summaries []string) string {
	return strings.Join(summaries, " ")
}

// CompressionRatio returns 100 * words(summary) / words(article).
func CompressionRatio(article, summary string) (float64, error) {
	articleWords := text.CountWords(article)
	if articleWords == 0 {
		return 0, ErrEmptyArticle
	}
	return 100 * float64(text.CountWords(summary)) / float64(articleWords), nil
}

// Classify grades a compression ratio.
func Classify(ratio float64) entity.Compression {
	pct := int(math.RoundToEven(ratio))
	switch {
	case ratio < greatBelow:
		return entity.Compression{
			Ratio:    ratio,
			Label:    entity.LabelGreat,
			Severity: entity.SeveritySuccess,
			Message: fmt.Sprintf("%d%% Great Compression!\n"+
				"The summary is succinct and effectively highlights key points.", pct),
		}
	case ratio <= excessiveAbove:
		return entity.Compression{
			Ratio:    ratio,
			Label:    entity.LabelBalanced,
			Severity: entity.SeverityInfo,
			Message: fmt.Sprintf("%d%% Well-balanced Summary.\n"+
				"It maintains essential details while being brief.", pct),
		}
	default:
		return entity.Compression{
			Ratio:    ratio,
			Label:    entity.LabelExcessive,
			Severity: entity.SeverityWarning,
			Message: fmt.Sprintf("%d%% Compression may be excessive.\n"+
				"The summary could be too brief and miss important details.", pct),
		}
	}
}

// Compress computes and grades the compression of summary against article.
func Compress(article, summary string) (entity.Compression, error) {
	ratio, err := CompressionRatio(article, summary)
	if err != nil {
		return entity.Compression{}, err
	}
	return Classify(ratio), nil
}
