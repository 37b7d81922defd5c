package ai

import (
	"context"
	"fmt"

	"github.com/appdever01/pilox-backend/internal/config"
)

// Request is one generation call. FileURI optionally points at an uploaded
// document the provider should ground the response in.
type Request struct {
	SystemPrompt string
	Prompt       string
	FileURI      string
	FileMimeType string
	Temperature  float32
	MaxTokens    int
}

// Provider generates text for a single credential. Key rotation and retry
// live outside the provider, in Service.
type Provider interface {
	Generate(ctx context.Context, apiKey string, req Request) (string, error)
	GetProviderName() string
}

// ProviderType selects the provider implementation.
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOpenAI ProviderType = "openai"
)

// NewProvider is the provider factory.
func NewProvider(cfg *config.Config) (Provider, []string, error) {
	switch ProviderType(cfg.AIProvider) {
	case ProviderGemini:
		if len(cfg.GeminiAPIKeys) == 0 {
			return nil, nil, fmt.Errorf("GEMINI_API_KEYS is required")
		}
		return NewGeminiProvider(cfg.AIModel), cfg.GeminiAPIKeys, nil

	case ProviderOpenAI:
		if len(cfg.OpenAIAPIKeys) == 0 {
			return nil, nil, fmt.Errorf("OPENAI_API_KEYS is required")
		}
		return NewOpenAIProvider(cfg.AIModel), cfg.OpenAIAPIKeys, nil

	default:
		return nil, nil, fmt.Errorf("unknown AI provider type: %s", cfg.AIProvider)
	}
}
