package summarizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"article-digest/internal/resilience/circuitbreaker"
	"article-digest/internal/resilience/retry"
)

// OpenAIConfig holds configuration for the OpenAI summarizer.
type OpenAIConfig struct {
	APIKey string

	// Model is the chat completion model.
	Model string

	// MaxTokens is the maximum number of tokens for the response.
	MaxTokens int

	// Timeout is the maximum duration for a single summarization call.
	Timeout time.Duration

	// BaseURL overrides the API endpoint. Empty uses the library default.
	BaseURL string
}

// DefaultOpenAIConfig returns the default OpenAI configuration.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:     openai.GPT4oMini,
		MaxTokens: 512,
		Timeout:   60 * time.Second,
	}
}

// OpenAI implements digest.Summarizer using the OpenAI chat completions API.
type OpenAI struct {
	remote
	client *openai.Client
	config OpenAIConfig
}

// NewOpenAI creates an OpenAI summarizer.
func NewOpenAI(cfg OpenAIConfig, limits Limits) *OpenAI {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAI{
		remote: remote{
			provider:        "openai",
			circuitBreaker:  circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
			retryConfig:     retry.AIAPIConfig(),
			limits:          limits,
			timeout:         cfg.Timeout,
			metricsRecorder: NewPrometheusSummaryMetrics("openai"),
		},
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

// Summarize implements digest.Summarizer.
func (o *OpenAI) Summarize(ctx context.Context, input string) (string, error) {
	return o.call(ctx, input, o.doSummarize)
}

func (o *OpenAI) doSummarize(ctx context.Context, input string) (string, error) {
	input, _ = truncate(input)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.config.Model,
		MaxTokens:   o.config.MaxTokens,
		// A zero temperature is omitted from the request body.
		Temperature: math.SmallestNonzeroFloat32,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: buildPrompt(o.limits, input),
		}},
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", asHTTPError(err))
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// asHTTPError exposes the status code of API errors to retry.IsRetryable.
func asHTTPError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &retry.HTTPError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return err
}
