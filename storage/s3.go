package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ImageStore hosts product images in an S3 bucket under public URLs.
type S3ImageStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// S3Options configures the image store. Endpoint is optional and used for
// LocalStack-style deployments; when set it also becomes the public URL base.
type S3Options struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewS3ImageStore builds an S3-backed image store.
func NewS3ImageStore(ctx context.Context, opts S3Options) (*S3ImageStore, error) {
	cfgOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" || opts.SecretKey != "" {
		cfgOpts = append(cfgOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	if opts.Endpoint != "" {
		baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(opts.Endpoint, "/"), opts.Bucket)
	}

	return &S3ImageStore{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: baseURL,
	}, nil
}

// Upload stores an object and returns its public URL.
func (s *S3ImageStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %q: %w", key, err)
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

// Delete removes an object by key.
func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

// KeyFromURL recovers the object key from a URL this store produced.
// URLs from elsewhere yield an empty key.
func (s *S3ImageStore) KeyFromURL(url string) string {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}
