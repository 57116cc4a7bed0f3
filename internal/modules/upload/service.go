package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	appcfg "github.com/plumablog/core/internal/config"
	"github.com/plumablog/core/internal/pkg/apperr"
)

// allowed image content types for imagen_url uploads.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

const maxUploadBytes = 10 << 20

// Service uploads article images to S3-compatible object storage.
type Service struct {
	client *s3.Client
	cfg    appcfg.S3Config
}

// NewService builds the S3 client. Returns a disabled service (nil client)
// when no bucket is configured.
func NewService(cfg appcfg.S3Config) (*Service, error) {
	if cfg.Bucket == "" {
		return &Service{cfg: cfg}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	}
	if cfg.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					SigningRegion:     cfg.Region,
					HostnameImmutable: true,
				}, nil
			},
		)
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}
	return &Service{client: s3.NewFromConfig(awsCfg), cfg: cfg}, nil
}

// Enabled reports whether object storage is configured.
func (s *Service) Enabled() bool { return s.client != nil }

// UploadImage stores an image under a random key and returns its public
// URL. Only common web image types are accepted.
func (s *Service) UploadImage(ctx context.Context, contentType string, r io.Reader) (string, error) {
	if !s.Enabled() {
		return "", apperr.Validationf("image upload is not configured")
	}

	ext, ok := allowedTypes[strings.ToLower(contentType)]
	if !ok {
		return "", apperr.Validationf("unsupported image type %q", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return "", apperr.Storage(err)
	}
	if len(data) == 0 {
		return "", apperr.Validationf("empty upload")
	}
	if len(data) > maxUploadBytes {
		return "", apperr.Validationf("image exceeds the %d MB limit", maxUploadBytes>>20)
	}

	key := fmt.Sprintf("images/%s/%s%s", time.Now().Format("2006/01"), uuid.NewString(), ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.cfg.Bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", apperr.Storage(err)
	}
	return s.publicURL(key), nil
}

func (s *Service) publicURL(key string) string {
	if s.cfg.PublicURL != "" {
		return strings.TrimRight(s.cfg.PublicURL, "/") + "/" + key
	}
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
