package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryProvider stores files in Cloudinary. Used for rendered videos,
// where Cloudinary's delivery network matters.
type CloudinaryProvider struct {
	cld       *cloudinary.Cloudinary
	cloudName string
}

// NewCloudinaryProvider creates a Cloudinary-backed provider.
func NewCloudinaryProvider(cloudName, apiKey, apiSecret string) (*CloudinaryProvider, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryProvider{cld: cld, cloudName: cloudName}, nil
}

func (p *CloudinaryProvider) Upload(ctx context.Context, file io.Reader, filename string, options *Options) (*Result, error) {
	options = mergeOptions(options)

	params := uploader.UploadParams{
		Folder:       options.Folder,
		ResourceType: options.ResourceType,
		Overwrite:    &options.Overwrite,
	}
	if options.PublicID != "" {
		params.PublicID = options.PublicID
	}

	result, err := p.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}

	return &Result{
		URL:       result.URL,
		SecureURL: result.SecureURL,
		FileName:  filename,
		Size:      int64(result.Bytes),
		Format:    result.Format,
		PublicID:  result.PublicID,
	}, nil
}

func (p *CloudinaryProvider) UploadMultipart(ctx context.Context, fileHeader *multipart.FileHeader, options *Options) (*Result, error) {
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

func (p *CloudinaryProvider) Delete(ctx context.Context, publicID string) error {
	result, err := p.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "video",
	})
	if err != nil {
		return fmt.Errorf("failed to delete from Cloudinary: %w", err)
	}
	if result.Result != "ok" {
		return fmt.Errorf("cloudinary delete failed: %s", result.Result)
	}
	return nil
}

func (p *CloudinaryProvider) GetURL(publicID string) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/video/upload/%s", p.cloudName, publicID)
}

func (p *CloudinaryProvider) GetProviderName() string {
	return "Cloudinary"
}
