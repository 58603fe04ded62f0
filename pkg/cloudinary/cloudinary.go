package cloudinary

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Client uploads and removes announcement images.
type Client interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (*UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

type UploadResult struct {
	URL          string
	ThumbnailURL string
	PublicID     string
}

// Optimized image params for fast frontend loading
const (
	ImageWidth = 1200
	ThumbWidth = 320
)

const imageEager = "q_auto,f_auto,w_1200,c_limit"

var eagerAsyncFalse = false

// BuildOptimizedImageURL returns a Cloudinary URL with delivery transformations.
func BuildOptimizedImageURL(cloudName, publicID string, width int) string {
	if width <= 0 {
		width = ImageWidth
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,c_limit/%s",
		cloudName, width, publicID)
}

type clientImpl struct {
	cloudName string
	uploader  *uploader.API
}

// UploadImage uploads an image with eager optimizations (auto quality, format, resize).
func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (*UploadResult, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     folder,
		PublicID:   publicID,
		Eager:      imageEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return nil, err
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	out := &UploadResult{URL: result.SecureURL, PublicID: result.PublicID}
	if len(result.Eager) > 0 {
		out.URL = result.Eager[0].SecureURL
	}
	out.ThumbnailURL = BuildOptimizedImageURL(c.cloudName, result.PublicID, ThumbWidth)
	return out, nil
}

func (c *clientImpl) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	res, err := c.uploader.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	return nil
}

// NewClientFromParams builds a Client from Cloudinary cloud name, API key, and secret.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{cloudName: cloudName, uploader: up}, nil
}
