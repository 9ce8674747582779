// Package objectstore provides the pre-signed upload URL adapter over S3.
package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"sponsorhub/internal/domain"
)

// S3Config holds configuration for the S3 upload signer.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

type s3Signer struct {
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

// NewS3Signer returns an UploadURLSigner that issues pre-signed PUT URLs
// valid for ttl.
func NewS3Signer(config S3Config, ttl time.Duration) domain.UploadURLSigner {
	awsCfg := aws.Config{
		Region: config.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			),
		),
	}
	client := s3.NewFromConfig(awsCfg)
	return &s3Signer{
		presign: s3.NewPresignClient(client),
		bucket:  config.Bucket,
		ttl:     ttl,
	}
}

// SignUpload pre-authorizes a PUT of exactly the declared content type and
// length to the given key.
func (s *s3Signer) SignUpload(ctx context.Context, key, mimeType string, size int64) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(mimeType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return req.URL, nil
}
