// Package blob stores uploaded files in an S3-compatible bucket.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/clivebixby0/myapt-2/internal/apperr"
)

// DefaultURLExpiry is the lifetime of the URLs returned by Upload.
const DefaultURLExpiry = 7 * 24 * time.Hour

// Config holds the parameters of the bucket.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional; set for MinIO and other S3-compatible servers
	PathStyle bool
	// AccessKeyID and SecretAccessKey are optional; the default credentials
	// chain is used when they are empty.
	AccessKeyID     string
	SecretAccessKey string
	URLExpiry       time.Duration
}

// Store uploads objects into a single bucket. Keys are the upload paths.
type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
}

// New creates a Store from cfg.
func New(ctx context.Context, cfg Config, optFns ...func(*s3.Options)) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		for _, fn := range optFns {
			fn(o)
		}
	})
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	return &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		expiry:  expiry,
	}, nil
}

// Upload writes body under path and returns a presigned URL to download it.
// An existing object at path is replaced.
func (s *Store) Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error) {
	// The SDK needs a seekable body of known length to sign the payload.
	data, err := io.ReadAll(body)
	if err != nil {
		return "", apperr.Validationf("read upload: %v", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", apperr.Wrap(apperr.Unavailable, fmt.Errorf("put object %s: %w", path, err))
	}
	return s.URL(ctx, path)
}

// URL returns a presigned GET URL for path.
func (s *Store) URL(ctx context.Context, path string) (string, error) {
	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}, func(po *s3.PresignOptions) { po.Expires = s.expiry })
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", path, err)
	}
	return out.URL, nil
}
