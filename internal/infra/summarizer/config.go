package summarizer

import (
	"fmt"

	"article-digest/internal/config"
	"article-digest/internal/usecase/digest"
	pkgconfig "article-digest/pkg/config"
)

// Config selects and configures a summarization provider.
type Config struct {
	// Type is one of config.SummarizerHuggingFace, SummarizerClaude,
	// SummarizerOpenAI or SummarizerNoop.
	Type        string
	Limits      Limits
	HuggingFace HuggingFaceConfig
	Claude      ClaudeConfig
	OpenAI      OpenAIConfig
}

// LoadConfigFromEnv reads provider settings from the environment. The
// provider type and word limits come from the already validated digest
// configuration.
//
// Environment variables:
//   - HUGGINGFACE_API_TOKEN, HUGGINGFACE_MODEL, HUGGINGFACE_BASE_URL,
//     HUGGINGFACE_RATE_PER_SECOND, HUGGINGFACE_TIMEOUT
//   - ANTHROPIC_API_KEY, CLAUDE_MODEL
//   - OPENAI_API_KEY, OPENAI_MODEL
func LoadConfigFromEnv(dc *config.DigestConfig) (Config, error) {
	hf := DefaultHuggingFaceConfig()
	hf.Token = pkgconfig.GetEnvString("HUGGINGFACE_API_TOKEN", "")
	hf.Model = pkgconfig.GetEnvString("HUGGINGFACE_MODEL", hf.Model)
	hf.BaseURL = pkgconfig.GetEnvString("HUGGINGFACE_BASE_URL", hf.BaseURL)
	hf.RatePerSecond = pkgconfig.GetEnvFloat("HUGGINGFACE_RATE_PER_SECOND", hf.RatePerSecond)
	hf.Timeout = pkgconfig.GetEnvDuration("HUGGINGFACE_TIMEOUT", hf.Timeout)

	claude := DefaultClaudeConfig()
	claude.APIKey = pkgconfig.GetEnvString("ANTHROPIC_API_KEY", "")
	claude.Model = pkgconfig.GetEnvString("CLAUDE_MODEL", claude.Model)

	oa := DefaultOpenAIConfig()
	oa.APIKey = pkgconfig.GetEnvString("OPENAI_API_KEY", "")
	oa.Model = pkgconfig.GetEnvString("OPENAI_MODEL", oa.Model)

	cfg := Config{
		Type:        dc.SummarizerType,
		Limits:      Limits{MinWords: dc.SummaryMinWords, MaxWords: dc.SummaryMaxWords},
		HuggingFace: hf,
		Claude:      claude,
		OpenAI:      oa,
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid summarizer configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings of the selected provider only.
func (c *Config) Validate() error {
	if err := c.Limits.Validate(); err != nil {
		return err
	}

	switch c.Type {
	case config.SummarizerHuggingFace:
		if c.HuggingFace.Model == "" || c.HuggingFace.BaseURL == "" {
			return fmt.Errorf("HUGGINGFACE_MODEL and HUGGINGFACE_BASE_URL cannot be empty")
		}
		if c.HuggingFace.RatePerSecond <= 0 {
			return fmt.Errorf("HUGGINGFACE_RATE_PER_SECOND must be positive, got %v", c.HuggingFace.RatePerSecond)
		}
		if err := pkgconfig.ValidatePositiveDuration(c.HuggingFace.Timeout); err != nil {
			return fmt.Errorf("HUGGINGFACE_TIMEOUT: %w", err)
		}
	case config.SummarizerClaude:
		if c.Claude.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when SUMMARIZER_TYPE=claude")
		}
	case config.SummarizerOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when SUMMARIZER_TYPE=openai")
		}
	case config.SummarizerNoop:
	default:
		return fmt.Errorf("unknown summarizer type %q", c.Type)
	}
	return nil
}

// New builds the configured summarizer. It is called once at startup and
// the result is shared by every pipeline run.
func New(cfg Config) (digest.Summarizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case config.SummarizerHuggingFace:
		return NewHuggingFace(cfg.HuggingFace, cfg.Limits), nil
	case config.SummarizerClaude:
		return NewClaude(cfg.Claude, cfg.Limits), nil
	case config.SummarizerOpenAI:
		return NewOpenAI(cfg.OpenAI, cfg.Limits), nil
	default:
		return NewNoOp(cfg.Limits), nil
	}
}
