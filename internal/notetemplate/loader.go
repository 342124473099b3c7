// Package notetemplate loads the note template that structures every SOAP extraction.
package notetemplate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"physionote/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	awsmiddleware "github.com/aws/smithy-go/middleware"
)

// ErrTemplateMissing is a configuration error: the template cannot be found or is empty.
var ErrTemplateMissing = errors.New("note template is missing")

// Loader returns the template text.
type Loader interface {
	Load(ctx context.Context) (string, error)
}

// FileLoader reads the template from the local filesystem.
type FileLoader struct {
	Path string
}

func (l FileLoader) Load(_ context.Context) (string, error) {
	b, err := os.ReadFile(l.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrTemplateMissing, l.Path)
	}
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", l.Path, err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrTemplateMissing, l.Path)
	}
	return string(b), nil
}

// ObjectGetter is the part of *s3.Client used by S3Loader.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader reads the template from an S3-compatible bucket.
type S3Loader struct {
	Client ObjectGetter
	Bucket string
	Key    string
}

func (l S3Loader) Load(ctx context.Context) (string, error) {
	out, err := l.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.Bucket),
		Key:    aws.String(l.Key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return "", fmt.Errorf("%w: s3://%s/%s", ErrTemplateMissing, l.Bucket, l.Key)
		}
		return "", fmt.Errorf("get template s3://%s/%s: %w", l.Bucket, l.Key, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("read template s3://%s/%s: %w", l.Bucket, l.Key, err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", fmt.Errorf("%w: s3://%s/%s is empty", ErrTemplateMissing, l.Bucket, l.Key)
	}
	return string(b), nil
}

// CachedLoader remembers the first successful load. Failures are not cached.
type CachedLoader struct {
	next Loader

	mu   sync.RWMutex
	text string
}

func NewCachedLoader(next Loader) *CachedLoader {
	return &CachedLoader{next: next}
}

func (c *CachedLoader) Load(ctx context.Context) (string, error) {
	c.mu.RLock()
	text := c.text
	c.mu.RUnlock()
	if text != "" {
		return text, nil
	}

	text, err := c.next.Load(ctx)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
	return text, nil
}

// NewLoader builds the cached loader selected by TEMPLATE_SOURCE.
func NewLoader(ctx context.Context, cfg *config.Config) (Loader, error) {
	switch strings.ToLower(cfg.TemplateSource) {
	case "", "file":
		return NewCachedLoader(FileLoader{Path: cfg.TemplatePath}), nil
	case "s3":
		if cfg.TemplateS3Bucket == "" {
			return nil, fmt.Errorf("%w: TEMPLATE_S3_BUCKET is not set", ErrTemplateMissing)
		}
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewCachedLoader(S3Loader{Client: client, Bucket: cfg.TemplateS3Bucket, Key: cfg.TemplateS3Key}), nil
	default:
		return nil, fmt.Errorf("unknown TEMPLATE_SOURCE %q, use file or s3", cfg.TemplateSource)
	}
}

// NewS3Client builds an S3 client. A custom S3_URL selects path-style addressing
// for S3-compatible stores.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithAPIOptions([]func(*awsmiddleware.Stack) error{removeDisableGzip()}),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load S3 config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3URL != "" {
			o.BaseEndpoint = aws.String(cfg.S3URL)
			o.UsePathStyle = true
		}
	}), nil
}

// removeDisableGzip works around signature errors with some S3-compatible services.
func removeDisableGzip() func(*awsmiddleware.Stack) error {
	return func(stack *awsmiddleware.Stack) error {
		if _, ok := stack.Finalize.Get("DisableAcceptEncodingGzip"); ok {
			_, err := stack.Finalize.Remove("DisableAcceptEncodingGzip")
			return err
		}
		return nil
	}
}
