// Package llm provides text-generation client interfaces and implementations.
package llm

import (
	"context"
	"fmt"
)

// Client is the interface to an external text generator. It is a
// stateless request/response boundary: given a prompt it returns a
// reply string or fails. An empty reply is not an error; callers
// substitute their own fallback text.
type Client interface {
	// Generate sends the full prompt and returns the reply text.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of text-generation provider.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Config carries provider selection and credentials.
type Config struct {
	Provider        Provider
	GeminiAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	AnthropicAPIKey string
}

// NewClient creates a text-generation client for the configured provider.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.AnthropicAPIKey)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
