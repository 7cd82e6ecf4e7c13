package llm

import (
	"context"

	"github.com/nikogura/job-tracker/pkg/config"
	"github.com/pkg/errors"
)

// Provider names accepted in configuration.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderVertex    = "vertex"
)

// CompletionRequest is a single-prompt, single-reply model call.
type CompletionRequest struct {
	Prompt      string
	Model       string
	Temperature float64
}

// Provider sends one prompt to a hosted model and returns its text reply.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// NewProvider builds the provider selected in cfg.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (provider Provider, err error) {
	switch cfg.Provider {
	case ProviderGemini, "":
		provider = NewGeminiProvider(cfg.APIKey, cfg.BaseURL, cfg.Timeout)
	case ProviderAnthropic:
		provider = NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.BaseURL)
	case ProviderOpenAI:
		provider = NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.BaseURL)
	case ProviderVertex:
		provider, err = NewVertexProvider(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.CredentialsFile)
		if err != nil {
			err = errors.Wrap(err, "failed to create vertex provider")
			return provider, err
		}
	default:
		err = errors.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	return provider, err
}
