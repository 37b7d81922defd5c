package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalProvider stores files on the local filesystem. Development only.
type LocalProvider struct {
	basePath string
	baseURL  string
}

// NewLocalProvider creates a filesystem-backed provider rooted at basePath.
func NewLocalProvider(basePath, baseURL string) *LocalProvider {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		panic(fmt.Sprintf("failed to create upload directory: %v", err))
	}

	return &LocalProvider{basePath: basePath, baseURL: baseURL}
}

func (p *LocalProvider) Upload(ctx context.Context, file io.Reader, filename string, options *Options) (*Result, error) {
	options = mergeOptions(options)

	ext := filepath.Ext(filename)
	nameWithoutExt := strings.TrimSuffix(filename, ext)

	var finalFilename string
	if options.PublicID != "" {
		finalFilename = options.PublicID + ext
	} else {
		uniqueID := uuid.New().String()[:8]
		finalFilename = fmt.Sprintf("%s_%d_%s%s", nameWithoutExt, time.Now().Unix(), uniqueID, ext)
	}

	folderPath := filepath.Join(p.basePath, options.Folder)
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	filePath := filepath.Join(folderPath, finalFilename)

	if !options.Overwrite {
		if _, err := os.Stat(filePath); err == nil {
			return nil, fmt.Errorf("file already exists: %s", finalFilename)
		}
	}

	out, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	size, err := io.Copy(out, file)
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	if options.MaxSize > 0 && size > options.MaxSize {
		os.Remove(filePath)
		return nil, fmt.Errorf("file size exceeds maximum allowed size: %d bytes", options.MaxSize)
	}

	publicID := options.Folder + "/" + finalFilename
	publicURL := p.baseURL + "/uploads/" + publicID

	return &Result{
		URL:       publicURL,
		SecureURL: publicURL,
		FileName:  filename,
		Size:      size,
		Format:    strings.TrimPrefix(ext, "."),
		PublicID:  publicID,
	}, nil
}

func (p *LocalProvider) UploadMultipart(ctx context.Context, fileHeader *multipart.FileHeader, options *Options) (*Result, error) {
	options = mergeOptions(options)

	if err := validateMultipart(fileHeader, options); err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	return p.Upload(ctx, file, fileHeader.Filename, options)
}

func (p *LocalProvider) Delete(ctx context.Context, publicID string) error {
	filePath := filepath.Join(p.basePath, publicID)

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", publicID)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

func (p *LocalProvider) GetURL(publicID string) string {
	return p.baseURL + "/uploads/" + publicID
}

func (p *LocalProvider) GetProviderName() string {
	return "Local Storage"
}
