package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Mirror uploads a copy of an artifact to durable storage and returns its URL.
type Mirror interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// S3API is the subset of the S3 client used by S3Mirror.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror uploads artifacts as public-read objects under the generated/ prefix.
type S3Mirror struct {
	api    S3API
	bucket string
	region string
	prefix string
}

// NewS3Mirror wraps an S3 client for bucket in region.
func NewS3Mirror(api S3API, bucket, region string) *S3Mirror {
	return &S3Mirror{api: api, bucket: bucket, region: region, prefix: "generated/"}
}

// NewS3MirrorFromConfig builds the mirror from a loaded AWS config. Uploads
// are attempted once so a failing bucket does not hold up the response.
func NewS3MirrorFromConfig(cfg aws.Config, bucket string) *S3Mirror {
	api := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Retryer = aws.NopRetryer{}
	})
	return NewS3Mirror(api, bucket, cfg.Region)
}

// Upload puts data at generated/<key>.
func (m *S3Mirror) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	objectKey := m.prefix + strings.TrimLeft(key, "/")
	_, err := m.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("s3: put %s: %w", objectKey, err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.bucket, m.region, objectKey), nil
}
