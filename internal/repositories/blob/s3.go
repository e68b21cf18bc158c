// Package blob implements the attachment blob store on S3-compatible object
// storage (AWS S3 or MinIO). Files never pass through this service: clients
// upload directly against a presigned PUT URL and only the storage key is
// persisted alongside the row.
package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	portssvc "github.com/gastrodia/homeledger/internal/core/ports/services"
	"github.com/gastrodia/homeledger/internal/platform/config"
)

const presignExpiry = 15 * time.Minute

type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3Store builds the store from the application configuration. A custom
// base endpoint switches it to MinIO or another S3-compatible server.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.S3Bucket,
	}, nil
}

// Ensure S3Store implements the portssvc.BlobStore interface
var _ portssvc.BlobStore = (*S3Store)(nil)

// randomStorageKey buckets keys by upload date so the bucket stays browsable.
func randomStorageKey() string {
	d := time.Now().UTC()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), int(d.Month()), d.Day(), uuid.New())
}

// PresignUploadURL issues a fresh storage key and a presigned PUT URL for it.
func (s *S3Store) PresignUploadURL(ctx context.Context, contentType string) (string, string, error) {
	key := randomStorageKey()

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := s.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload for key %s: %w", key, err)
	}

	return key, req.URL, nil
}

// Delete removes one object. Deleting a key that no longer exists is not an
// error on S3, which suits retried cluster deletions.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}
