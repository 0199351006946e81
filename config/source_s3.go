// file: config/source_s3.go

package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3GetObjectAPI is the subset of the S3 client the provider uses.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3SourceProvider reads configuration documents addressed as
// s3://bucket/key.
type S3SourceProvider struct {
	Timeout time.Duration

	once      sync.Once
	client    S3GetObjectAPI
	clientErr error
	newClient func(ctx context.Context) (S3GetObjectAPI, error)
}

// NewS3SourceProvider uses an existing client.
func NewS3SourceProvider(client S3GetObjectAPI) *S3SourceProvider {
	return &S3SourceProvider{client: client}
}

func newLazyS3SourceProvider() *S3SourceProvider {
	return &S3SourceProvider{
		newClient: func(ctx context.Context) (S3GetObjectAPI, error) {
			cfg, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to load AWS config: %w", err)
			}
			return s3.NewFromConfig(cfg), nil
		},
	}
}

func (p *S3SourceProvider) Open(path string) (io.ReadCloser, error) {
	bucket, key, err := parseS3Path(path)
	if err != nil {
		return nil, err
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (p *S3SourceProvider) getClient(ctx context.Context) (S3GetObjectAPI, error) {
	p.once.Do(func() {
		if p.client != nil || p.newClient == nil {
			return
		}
		p.client, p.clientErr = p.newClient(ctx)
	})
	if p.clientErr != nil {
		return nil, p.clientErr
	}
	if p.client == nil {
		return nil, fmt.Errorf("s3 source has no client")
	}
	return p.client, nil
}

func parseS3Path(path string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 path %q: %w", path, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid s3 path %q: want s3://bucket/key", path)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("invalid s3 path %q: missing key", path)
	}
	return u.Host, key, nil
}
