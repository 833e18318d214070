package storage

import (
	"context"
	"fmt"
	"time"

	"fitcoach/internal/config"
	"fitcoach/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultPresignExpiry = 15 * time.Minute

// FileStorage hands out short-lived URLs so media bytes never pass through the API.
type FileStorage interface {
	PresignUpload(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error)
	PresignDownload(ctx context.Context, objectKey string, expires time.Duration) (string, error)
	Delete(ctx context.Context, objectKey string) error
}

type s3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewS3Storage(ctx context.Context, cfg config.S3Config) (FileStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("object storage initialized", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)

	return &s3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

func (s *s3Storage) PresignUpload(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignExpiry
	}

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("presign upload %q: %w", objectKey, err)
	}
	return req.URL, nil
}

func (s *s3Storage) PresignDownload(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignExpiry
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("presign download %q: %w", objectKey, err)
	}
	return req.URL, nil
}

func (s *s3Storage) Delete(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", objectKey, err)
	}
	return nil
}
