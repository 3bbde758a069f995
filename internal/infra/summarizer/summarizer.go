// Package summarizer provides abstractive summarization of article chunks.
//
// Providers: the Hugging Face Inference API (default, facebook/bart-large-cnn),
// Claude, OpenAI and a deterministic offline NoOp. Every remote provider
// calls through a circuit breaker with retry and records Prometheus metrics
// on summary length in words and on compliance with the configured bounds.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"article-digest/internal/observability/logging"
	"article-digest/internal/resilience/circuitbreaker"
	"article-digest/internal/resilience/retry"
	"article-digest/internal/utils/text"
)

var (
	// ErrEmptyInput is returned when asked to summarize text without words.
	ErrEmptyInput = errors.New("summarizer: input has no words")

	// ErrEmptyResponse is returned when a provider answers without a summary.
	ErrEmptyResponse = errors.New("summarizer: provider returned an empty summary")
)

// Limits bounds the length of a chunk summary in words.
type Limits struct {
	MinWords int
	MaxWords int
}

// DefaultLimits matches the bart-large-cnn settings (30..120).
func DefaultLimits() Limits {
	return Limits{MinWords: 30, MaxWords: 120}
}

// Validate checks the bounds.
func (l Limits) Validate() error {
	if l.MinWords < 1 {
		return fmt.Errorf("min words must be positive, got %d", l.MinWords)
	}
	if l.MaxWords < l.MinWords {
		return fmt.Errorf("max words (%d) must not be below min words (%d)", l.MaxWords, l.MinWords)
	}
	return nil
}

// maxInputRunes caps the text sent to chat-style providers.
const maxInputRunes = 10000

// remote holds the resilience and observability plumbing shared by API-backed providers.
type remote struct {
	provider        string
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	limits          Limits
	timeout         time.Duration
	metricsRecorder SummaryMetricsRecorder
}

// CircuitBreaker exposes the provider's breaker for health reporting.
func (r *remote) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}

// call runs one summarization through retry and the circuit breaker, then
// logs and records the result.
func (r *remote) call(ctx context.Context, input string, do func(ctx context.Context, input string) (string, error)) (string, error) {
	if text.CountWords(input) == 0 {
		return "", ErrEmptyInput
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	logger := logging.FromContext(ctx).With(
		slog.String("provider", r.provider),
		slog.String("request_id", uuid.NewString()))
	logger.Debug("starting summarization",
		slog.Int("input_words", text.CountWords(input)),
		slog.Int("min_words", r.limits.MinWords),
		slog.Int("max_words", r.limits.MaxWords))

	start := time.Now()
	var summary string
	err := retry.WithBackoff(ctx, r.retryConfig, func() error {
		var err error
		summary, err = circuitbreaker.Do(r.circuitBreaker, func() (string, error) {
			return do(ctx, input)
		})
		if circuitbreaker.IsRejected(err) {
			logger.Warn("circuit breaker open, request rejected",
				slog.String("state", r.circuitBreaker.State().String()))
			return fmt.Errorf("%s unavailable: %w", r.provider, err)
		}
		return err
	})
	duration := time.Since(start)
	if err != nil {
		logger.Error("summarization failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("%s summarize failed: %w", r.provider, err)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", ErrEmptyResponse
	}

	words := text.CountWords(summary)
	withinLimit := words <= r.limits.MaxWords
	logger.Debug("summarization completed",
		slog.Int("summary_words", words),
		slog.Bool("within_limit", withinLimit),
		slog.Duration("duration", duration))
	if !withinLimit {
		logger.Warn("summary exceeds word limit",
			slog.Int("summary_words", words),
			slog.Int("limit", r.limits.MaxWords))
	}

	r.metricsRecorder.RecordLength(words)
	r.metricsRecorder.RecordDuration(duration)
	r.metricsRecorder.RecordCompliance(withinLimit)
	if !withinLimit {
		r.metricsRecorder.RecordLimitExceeded()
	}
	return summary, nil
}

// truncate cuts input to maxInputRunes runes.
func truncate(input string) (string, bool) {
	runes := []rune(input)
	if len(runes) <= maxInputRunes {
		return input, false
	}
	return string(runes[:maxInputRunes]), true
}

// buildPrompt constructs the instruction for chat-style providers.
func buildPrompt(limits Limits, input string) string {
	return fmt.Sprintf(
		"Summarize the following text in English in %d to %d words. "+
			"Reply with the summary only, as plain prose without headings or lists.\n\n%s",
		limits.MinWords, limits.MaxWords, input)
}
