package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	appconfig "techstore-server/internal/config"
	"techstore-server/internal/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ interfaces.ImageStore = (*s3ImageStore)(nil)

// s3ImageStore uploads images to any S3-compatible object store and serves
// them through a public base URL.
type s3ImageStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// NewS3ImageStore builds the S3 client from static credentials and a custom
// endpoint (MinIO, R2 and friends all speak this dialect).
func NewS3ImageStore(ctx context.Context, cfg *appconfig.Config, logger *zap.Logger) (interfaces.ImageStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &s3ImageStore{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: strings.TrimSuffix(cfg.S3BaseURL, "/"),
		logger:  logger.Named("S3ImageStore"),
	}, nil
}

// Upload stores the object under key and returns its public URL.
func (s *s3ImageStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	s.logger.Debug("Uploading object", zap.String("bucket", s.bucket), zap.String("key", key), zap.Int("size", len(data)))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("Failed to upload object", zap.Error(err), zap.String("key", key))
		return "", fmt.Errorf("failed to upload object %q: %w", key, err)
	}

	url := s.baseURL + "/" + key
	s.logger.Info("Object uploaded", zap.String("key", key), zap.String("url", url))
	return url, nil
}

// ObjectKey builds a collision-free storage key, date-partitioned like the
// rest of the bucket contents.
func ObjectKey(folder, filename string) string {
	d := time.Now()
	ext := ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = filename[i:]
	}
	return fmt.Sprintf("%s/%d/%02d/%v%s", folder, d.Year(), int(d.Month()), uuid.New(), ext)
}
