package maintenance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures an S3-compatible snapshot destination (AWS S3, MinIO, Wasabi).
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // full URL for non-AWS services
	AccessKeyID     string // empty uses the default credential chain
	SecretAccessKey string
}

// Validate checks the required fields.
func (c S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("s3 snapshots: bucket is required")
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return errors.New("s3 snapshots: access key id and secret must be set together")
	}
	return nil
}

// S3PutAPI is the subset of the S3 client used by S3Sink.
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads snapshots to a bucket.
type S3Sink struct {
	client S3PutAPI
	bucket string
	prefix string
}

// NewS3Sink builds an S3 client from cfg.
func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 snapshots: load config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return NewS3SinkWithClient(s3.NewFromConfig(awsCfg, clientOpts...), cfg.Bucket, cfg.Prefix), nil
}

// NewS3SinkWithClient wraps an existing client.
func NewS3SinkWithClient(client S3PutAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}
}

// Name returns the sink name.
func (s *S3Sink) Name() string { return "s3" }

// Key returns the object key for a snapshot name.
func (s *S3Sink) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Write uploads data under the prefixed key.
func (s *S3Sink) Write(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(s.Key(name)),
		Body:            bytes.NewReader(data),
		ContentType:     aws.String("application/json"),
		ContentEncoding: aws.String("gzip"),
	})
	if err != nil {
		return fmt.Errorf("s3 snapshots: put %s: %w", s.Key(name), err)
	}
	return nil
}
