package publish

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of *s3.Client the S3 publisher uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads pages to an S3 bucket.
type S3Publisher struct {
	client       S3API
	bucket       string
	prefix       string
	cacheControl string
}

// NewS3Publisher creates a publisher for bucket. prefix is prepended to
// every key.
func NewS3Publisher(client S3API, bucket, prefix string) *S3Publisher {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Publisher{
		client:       client,
		bucket:       bucket,
		prefix:       prefix,
		cacheControl: "no-cache",
	}
}

// WithCacheControl sets the Cache-Control header stored with each page.
func (p *S3Publisher) WithCacheControl(v string) *S3Publisher {
	p.cacheControl = v
	return p
}

// Key returns the object key for a page name.
func (p *S3Publisher) Key(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return p.prefix + clean, nil
}

// Publish implements Publisher.
func (p *S3Publisher) Publish(ctx context.Context, name string, html []byte) error {
	key, err := p.Key(name)
	if err != nil {
		return err
	}
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(html),
		ContentType:  aws.String("text/html; charset=utf-8"),
		CacheControl: aws.String(p.cacheControl),
	})
	if err != nil {
		return fmt.Errorf("s3 publish %s failed: %w", key, err)
	}
	return nil
}

// NewS3Client creates an S3 client for region from the default AWS
// configuration chain: environment, shared config and credentials files,
// SSO, web identity and instance metadata. An empty region keeps the one
// the chain resolves.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}
