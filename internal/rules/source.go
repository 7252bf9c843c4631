package rules

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source produces a rule table. A table is loaded once at startup and never
// reloaded.
type Source interface {
	Load(ctx context.Context) (*Table, error)
	Name() string
}

type StaticSource struct{}

func (StaticSource) Load(ctx context.Context) (*Table, error) {
	return NewTable(Catalog())
}

func (StaticSource) Name() string { return "builtin" }

// FileSource reads a YAML rule pack from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open rule pack: %w", err)
	}
	defer f.Close()

	t, err := ParsePack(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return t, nil
}

func (s FileSource) Name() string { return "file:" + s.Path }

// ObjectGetter is the subset of the S3 client used by S3Source.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a YAML rule pack from an S3 object.
type S3Source struct {
	Client ObjectGetter
	Bucket string
	Key    string
}

// NewS3Source builds a source using the default AWS credential chain.
func NewS3Source(ctx context.Context, bucket, key, region string) (*S3Source, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Source{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
		Key:    key,
	}, nil
}

func (s *S3Source) Load(ctx context.Context) (*Table, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	defer out.Body.Close()

	t, err := ParsePack(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	return t, nil
}

func (s *S3Source) Name() string { return "s3://" + s.Bucket + "/" + s.Key }

// Load resolves src and logs the outcome.
func Load(ctx context.Context, src Source, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t, err := src.Load(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load rule table",
			slog.String("source", src.Name()),
			slog.String("error", err.Error()))
		return nil, err
	}

	logger.InfoContext(ctx, "Rule table loaded",
		slog.String("source", src.Name()),
		slog.Int("rules", t.Len()))
	return t, nil
}
