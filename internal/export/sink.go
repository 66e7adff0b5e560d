package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Sink stores a named blob.
type Sink interface {
	Put(ctx context.Context, name string, body []byte) error
}

// Destination is where an export goes: a local file, or an object when
// Bucket is set.
type Destination struct {
	Bucket string
	Dir    string // local directory or key prefix
	Name   string
}

func (d Destination) IsS3() bool { return d.Bucket != "" }

func (d Destination) String() string {
	if d.IsS3() {
		return "s3://" + d.Bucket + "/" + path.Join(d.Dir, d.Name)
	}
	return filepath.Join(d.Dir, d.Name)
}

// ParseDestination accepts "s3://bucket/key" or a local file path.
func ParseDestination(dest string) (Destination, error) {
	if dest == "" {
		return Destination{}, fmt.Errorf("parse destination: empty")
	}
	if rest, ok := strings.CutPrefix(dest, "s3://"); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		key = strings.Trim(key, "/")
		if bucket == "" || key == "" {
			return Destination{}, fmt.Errorf("parse destination %q: want s3://bucket/key", dest)
		}
		dir, name := path.Split(key)
		return Destination{Bucket: bucket, Dir: strings.TrimSuffix(dir, "/"), Name: name}, nil
	}
	if strings.HasSuffix(dest, "/") || strings.HasSuffix(dest, string(filepath.Separator)) {
		return Destination{}, fmt.Errorf("parse destination %q: want a file name", dest)
	}
	return Destination{Dir: filepath.Dir(dest), Name: filepath.Base(dest)}, nil
}

// FileSink writes blobs under a local directory, creating it on demand.
type FileSink struct {
	Dir string
}

func (s FileSink) Put(_ context.Context, name string, body []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.Dir, err)
	}
	full := filepath.Join(s.Dir, name)
	tmp, err := os.CreateTemp(s.Dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", full, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", full, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", full, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("write %s: %w", full, err)
	}
	return nil
}

// objectPutter is the slice of the S3 client the sink needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds the optional region and endpoint override (MinIO, LocalStack).
type S3Config struct {
	Region   string
	Endpoint string
}

// S3Sink uploads blobs under a key prefix in one bucket.
type S3Sink struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Sink builds a sink from the default AWS credential chain.
func NewS3Sink(ctx context.Context, bucket, prefix string, cfg S3Config) (*S3Sink, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return newS3Sink(s3.NewFromConfig(awsCfg, s3Opts...), bucket, prefix), nil
}

func newS3Sink(client objectPutter, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Sink) Put(ctx context.Context, name string, body []byte) error {
	key := path.Join(s.prefix, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType(name)),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func contentType(name string) string {
	if strings.HasSuffix(name, ".csv") {
		return "text/csv"
	}
	return "application/octet-stream"
}

// NewSink returns the sink serving d.
func NewSink(ctx context.Context, d Destination, cfg S3Config) (Sink, error) {
	if d.IsS3() {
		return NewS3Sink(ctx, d.Bucket, d.Dir, cfg)
	}
	return FileSink{Dir: d.Dir}, nil
}

// Write parses dest and stores body there.
func Write(ctx context.Context, dest string, body []byte, cfg S3Config) (Destination, error) {
	d, err := ParseDestination(dest)
	if err != nil {
		return d, err
	}
	sink, err := NewSink(ctx, d, cfg)
	if err != nil {
		return d, err
	}
	return d, sink.Put(ctx, d.Name, body)
}
