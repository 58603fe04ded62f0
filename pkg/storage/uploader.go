package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

type Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	UsePathStyle  bool
	Prefix        string
}

// Archiver stores a copy of a file and returns its object key.
type Archiver interface {
	Archive(ctx context.Context, data []byte, contentType, filename string) (string, error)
}

// Uploader archives files into an S3-compatible bucket. Objects are private.
type Uploader struct {
	cfg    Config
	client *s3.Client
	now    func() time.Time
}

func NewUploader(cfg Config) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3 region is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials are required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "spreadsheets"
	}

	options := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		options.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return &Uploader{cfg: cfg, client: s3.New(options), now: time.Now}, nil
}

func (u *Uploader) Archive(ctx context.Context, data []byte, contentType, filename string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("no data to upload")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := GenerateKey(u.cfg.Prefix, filename, u.now())
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}
	return key, nil
}

// URL returns the public URL of key when a public base URL is configured.
func (u *Uploader) URL(key string) string {
	if u.cfg.PublicBaseURL == "" {
		return ""
	}
	return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + key
}

// GenerateKey builds prefix/yyyy/mm/dd/<uuid><ext>.
func GenerateKey(prefix, filename string, at time.Time) string {
	at = at.UTC()
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" || len(ext) > 6 {
		ext = ".bin"
	}
	return path.Join(strings.Trim(prefix, "/"), fmt.Sprintf("%04d/%02d/%02d", at.Year(), at.Month(), at.Day()), uuid.NewString()+ext)
}
