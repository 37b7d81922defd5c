// Package upload stores generated artifacts (rendered videos, page frames,
// uploaded PDFs) behind a swappable provider.
package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/appdever01/pilox-backend/internal/config"
)

// Result describes a stored file.
type Result struct {
	URL       string `json:"url"`
	SecureURL string `json:"secure_url"`
	FileName  string `json:"file_name"`
	Size      int64  `json:"size"`
	Format    string `json:"format"`
	PublicID  string `json:"public_id"`
}

// Options configures a single upload.
type Options struct {
	Folder       string
	PublicID     string
	Overwrite    bool
	ResourceType string
	AllowedTypes []string
	MaxSize      int64
}

// Provider is the storage backend interface.
type Provider interface {
	Upload(ctx context.Context, file io.Reader, filename string, options *Options) (*Result, error)
	UploadMultipart(ctx context.Context, fileHeader *multipart.FileHeader, options *Options) (*Result, error)
	Delete(ctx context.Context, publicID string) error
	GetURL(publicID string) string
	GetProviderName() string
}

// PDFOptions are the defaults for user-submitted PDFs.
func PDFOptions() *Options {
	return &Options{
		Folder:       "pdfs",
		ResourceType: "raw",
		AllowedTypes: []string{"application/pdf"},
		MaxSize:      50 * 1024 * 1024,
	}
}

// VideoOptions are the defaults for rendered lesson videos.
func VideoOptions() *Options {
	return &Options{
		Folder:       "videos",
		ResourceType: "video",
		AllowedTypes: []string{"video/mp4"},
		MaxSize:      500 * 1024 * 1024,
	}
}

func mergeOptions(custom *Options) *Options {
	defaults := &Options{
		Folder:       "uploads",
		ResourceType: "auto",
		MaxSize:      50 * 1024 * 1024,
	}

	if custom == nil {
		return defaults
	}

	if custom.Folder != "" {
		defaults.Folder = custom.Folder
	}
	if custom.PublicID != "" {
		defaults.PublicID = custom.PublicID
	}
	if custom.ResourceType != "" {
		defaults.ResourceType = custom.ResourceType
	}
	if len(custom.AllowedTypes) > 0 {
		defaults.AllowedTypes = custom.AllowedTypes
	}
	if custom.MaxSize > 0 {
		defaults.MaxSize = custom.MaxSize
	}
	defaults.Overwrite = custom.Overwrite

	return defaults
}

func validateMultipart(fileHeader *multipart.FileHeader, options *Options) error {
	if len(options.AllowedTypes) > 0 {
		contentType := fileHeader.Header.Get("Content-Type")
		allowed := false
		for _, allowedType := range options.AllowedTypes {
			if contentType == allowedType {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("file type not allowed: %s", contentType)
		}
	}

	if options.MaxSize > 0 && fileHeader.Size > options.MaxSize {
		return fmt.Errorf("file size exceeds maximum allowed size: %d bytes", options.MaxSize)
	}

	return nil
}

// NewProviderFromConfig selects the storage backend from config.
func NewProviderFromConfig(cfg *config.Config) (Provider, error) {
	switch cfg.UploadProvider {
	case "s3":
		return NewS3Provider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, cfg.S3Region, cfg.S3Bucket)
	case "cloudinary":
		return NewCloudinaryProvider(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret)
	case "", "local":
		return NewLocalProvider(cfg.UploadBasePath, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown upload provider: %s", cfg.UploadProvider)
	}
}
