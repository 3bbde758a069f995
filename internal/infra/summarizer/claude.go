package summarizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"article-digest/internal/resilience/circuitbreaker"
	"article-digest/internal/resilience/retry"
)

// ClaudeConfig holds configuration for the Claude summarizer.
type ClaudeConfig struct {
	APIKey string

	// Model is the Claude model identifier.
	Model string

	// MaxTokens is the maximum number of tokens for the response.
	MaxTokens int

	// Timeout is the maximum duration for a single summarization call.
	Timeout time.Duration

	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string
}

// DefaultClaudeConfig returns the default Claude configuration.
func DefaultClaudeConfig() ClaudeConfig {
	return ClaudeConfig{
		Model:     string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens: 512,
		Timeout:   60 * time.Second,
	}
}

// Claude implements digest.Summarizer using Anthropic's Claude API.
type Claude struct {
	remote
	client anthropic.Client
	config ClaudeConfig
}

// NewClaude creates a Claude summarizer.
func NewClaude(cfg ClaudeConfig, limits Limits) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Retries are handled by retry.WithBackoff.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Claude{
		remote: remote{
			provider:        "claude",
			circuitBreaker:  circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
			retryConfig:     retry.AIAPIConfig(),
			limits:          limits,
			timeout:         cfg.Timeout,
			metricsRecorder: NewPrometheusSummaryMetrics("claude"),
		},
		client: anthropic.NewClient(opts...),
		config: cfg,
	}
}

// Summarize implements digest.Summarizer.
func (c *Claude) Summarize(ctx context.Context, input string) (string, error) {
	return c.call(ctx, input, c.doSummarize)
}

func (c *Claude) doSummarize(ctx context.Context, input string) (string, error) {
	input, _ = truncate(input)

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.config.Model),
		MaxTokens:   int64(c.config.MaxTokens),
		Temperature: anthropic.Float(0),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(c.limits, input))),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("claude api error: %w", &retry.HTTPError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()})
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", ErrEmptyResponse
	}
	block, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected content type %q", message.Content[0].Type)
	}
	return block.Text, nil
}
