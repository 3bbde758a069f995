package summarizer

import (
	"context"

	"article-digest/internal/utils/text"
)

// NoOp is an offline summarizer that returns the leading words of the chunk,
// at most Limits.MaxWords of them. It is deterministic and makes no network
// calls, which suits tests and local development.
type NoOp struct {
	limits Limits
}

// NewNoOp creates a NoOp summarizer.
func NewNoOp(limits Limits) *NoOp {
	return &NoOp{limits: limits}
}

// Summarize implements digest.Summarizer.
func (n *NoOp) Summarize(ctx context.Context, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if text.CountWords(input) == 0 {
		return "", ErrEmptyInput
	}
	summary, _ := text.LeadingWords(input, n.limits.MaxWords)
	return summary, nil
}
