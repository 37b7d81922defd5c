// Package email sends transactional mail (verification links, video
// completion notices) through a pluggable provider.
package email

import (
	"fmt"

	"github.com/appdever01/pilox-backend/internal/config"
)

// Provider defines the interface for email providers.
type Provider interface {
	SendEmail(to, subject, body string) error
	GetProviderName() string
}

// Service wraps the email provider.
type Service struct {
	provider Provider
}

// NewService creates an email service with the configured provider. A
// missing provider is allowed: sends become errors the callers log and
// swallow, notification mail is never load-bearing.
func NewService(cfg *config.Config) *Service {
	var provider Provider
	switch cfg.EmailProvider {
	case "brevo":
		provider = NewBrevoProvider(cfg.BrevoAPIKey, cfg.EmailFrom, cfg.EmailFromName)
	case "resend":
		provider = NewResendProvider(cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailFromName)
	}
	return &Service{provider: provider}
}

// NewServiceWithProvider creates a service with a custom provider (for testing).
func NewServiceWithProvider(provider Provider) *Service {
	return &Service{provider: provider}
}

// SendEmail sends an HTML email.
func (s *Service) SendEmail(to, subject, body string) error {
	if s.provider == nil {
		return fmt.Errorf("no email provider configured")
	}
	return s.provider.SendEmail(to, subject, body)
}

// GetProviderName returns the name of the current provider.
func (s *Service) GetProviderName() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.GetProviderName()
}
