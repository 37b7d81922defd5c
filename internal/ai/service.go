package ai

import (
	"context"
	"log"

	"github.com/appdever01/pilox-backend/internal/config"
)

// Service composes a provider with the key ring. Every external AI call in
// the system goes through Generate; retry policy lives nowhere else. The
// service knows nothing about credits — reservation is layered outside.
type Service struct {
	provider Provider
	ring     *KeyRing
}

// NewService creates the AI service with provider and key pool from config.
func NewService(cfg *config.Config) *Service {
	provider, keys, err := NewProvider(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to create AI provider: %v", err)
	}

	ring, err := NewKeyRing(keys)
	if err != nil {
		log.Fatalf("❌ Failed to create AI key ring: %v", err)
	}

	log.Printf("🤖 Using AI provider: %s (%d keys)", provider.GetProviderName(), ring.Len())

	return &Service{provider: provider, ring: ring}
}

// NewServiceWithProvider creates a service with a custom provider and ring
// (for testing).
func NewServiceWithProvider(provider Provider, ring *KeyRing) *Service {
	return &Service{provider: provider, ring: ring}
}

// Generate runs the request against the provider, rotating through the key
// pool on failure.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	var text string
	err := s.ring.Attempt(ctx, func(ctx context.Context, apiKey string) error {
		var genErr error
		text, genErr = s.provider.Generate(ctx, apiKey, req)
		return genErr
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// GenerateJSON runs the request and parses the response as a tagged Result.
func (s *Service) GenerateJSON(ctx context.Context, req Request) (Result, error) {
	text, err := s.Generate(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return ParseResult(text), nil
}

// GetProviderName returns the current provider name.
func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}
