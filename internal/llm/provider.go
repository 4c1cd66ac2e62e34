// Package llm sends analysis prompts to a language-model provider and parses
// the structured result. Providers are narrow prompt-in/text-out clients;
// everything domain-specific lives in the prompt and the parser.
package llm

import (
	"context"
	"fmt"

	"github.com/tickerdesk/tickerdesk/internal/config"
)

// Provider completes a prompt and returns the raw text response
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// NewProvider selects the configured provider implementation
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("AI_PROVIDER is openai but OPENAI_API_KEY is not set")
		}
		return NewOpenAIClient(cfg), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("AI_PROVIDER is anthropic but ANTHROPIC_API_KEY is not set")
		}
		return NewAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q", cfg.Provider)
	}
}
