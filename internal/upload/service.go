package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
)

// Service wraps the configured provider. Callers depend on the service, not
// on a concrete backend.
type Service struct {
	provider Provider
}

// NewService creates an upload service over the provider.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

func (s *Service) Upload(ctx context.Context, file io.Reader, filename string, options *Options) (*Result, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("upload provider not configured")
	}
	return s.provider.Upload(ctx, file, filename, options)
}

func (s *Service) UploadMultipart(ctx context.Context, fileHeader *multipart.FileHeader, options *Options) (*Result, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("upload provider not configured")
	}
	return s.provider.UploadMultipart(ctx, fileHeader, options)
}

func (s *Service) Delete(ctx context.Context, publicID string) error {
	if s.provider == nil {
		return fmt.Errorf("upload provider not configured")
	}
	return s.provider.Delete(ctx, publicID)
}

func (s *Service) GetURL(publicID string) string {
	if s.provider == nil {
		return ""
	}
	return s.provider.GetURL(publicID)
}

func (s *Service) GetProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.GetProviderName()
}
