package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"article-digest/internal/resilience/circuitbreaker"
	"article-digest/internal/resilience/retry"
)

// HuggingFaceConfig holds configuration for the Hugging Face Inference API.
type HuggingFaceConfig struct {
	// Token is the API token sent as a bearer credential. Optional for public
	// models but rate limits are much lower without it.
	Token string

	// Model is the summarization model repository id.
	// Default: facebook/bart-large-cnn
	Model string

	// BaseURL is the inference endpoint root; requests go to {BaseURL}/models/{Model}.
	// Default: https://router.huggingface.co/hf-inference
	BaseURL string

	// RatePerSecond paces outgoing requests across the process. Default: 1
	RatePerSecond float64

	// Timeout bounds one summarization call including retries. Default: 120s
	Timeout time.Duration
}

// DefaultHuggingFaceConfig returns the defaults listed on HuggingFaceConfig.
func DefaultHuggingFaceConfig() HuggingFaceConfig {
	return HuggingFaceConfig{
		Model:         "facebook/bart-large-cnn",
		BaseURL:       "https://router.huggingface.co/hf-inference",
		RatePerSecond: 1,
		Timeout:       120 * time.Second,
	}
}

// hfRequest is the summarization pipeline payload.
type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	MinLength int  `json:"min_length"`
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// HuggingFace implements digest.Summarizer with the Hugging Face Inference API.
// Sampling is disabled so a given model returns the same summary for the same chunk.
type HuggingFace struct {
	remote
	client  *resty.Client
	limiter *rate.Limiter
	model   string
}

// NewHuggingFace creates a Hugging Face summarizer.
func NewHuggingFace(cfg HuggingFaceConfig, limits Limits) *HuggingFace {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &HuggingFace{
		remote: remote{
			provider:        "huggingface",
			circuitBreaker:  circuitbreaker.New(circuitbreaker.HuggingFaceAPIConfig()),
			retryConfig:     retry.AIAPIConfig(),
			limits:          limits,
			timeout:         cfg.Timeout,
			metricsRecorder: NewPrometheusSummaryMetrics("huggingface"),
		},
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		model:   cfg.Model,
	}
}

// Summarize implements digest.Summarizer.
func (h *HuggingFace) Summarize(ctx context.Context, input string) (string, error) {
	return h.call(ctx, input, h.doSummarize)
}

func (h *HuggingFace) doSummarize(ctx context.Context, input string) (string, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	var (
		out    []hfSummary
		errOut hfError
	)
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(hfRequest{
			Inputs: input,
			Parameters: hfParameters{
				MinLength: h.limits.MinWords,
				MaxLength: h.limits.MaxWords,
				DoSample:  false,
			},
			Options: hfOptions{WaitForModel: true},
		}).
		SetResult(&out).
		SetError(&errOut).
		Post("/models/" + h.model)
	if err != nil {
		return "", fmt.Errorf("huggingface request: %w", err)
	}

	if resp.IsError() {
		msg := errOut.Error
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		if errOut.EstimatedTime > 0 {
			msg = fmt.Sprintf("%s (model loading, estimated %.0fs)", msg, errOut.EstimatedTime)
		}
		return "", &retry.HTTPError{StatusCode: resp.StatusCode(), Message: msg}
	}

	if len(out) == 0 {
		return "", ErrEmptyResponse
	}
	return out[0].SummaryText, nil
}
