// Package source resolves session export locations: local files and
// directories, or objects under an s3://bucket/key URI.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// ErrBadURI is returned for an s3:// URI without a bucket.
var ErrBadURI = errors.New("source: malformed s3 uri")

// S3API is the subset of the S3 client used here.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// Source opens exports. The S3 client is created on first use so local
// imports never need AWS credentials.
type Source struct {
	region string

	mu     sync.Mutex
	client S3API
}

// New creates a Source. An empty region defers to the AWS default chain.
func New(region string) *Source {
	return &Source{region: region}
}

// NewWithClient creates a Source backed by an existing S3 client.
func NewWithClient(client S3API) *Source {
	return &Source{client: client}
}

// IsS3 reports whether uri names an S3 object or prefix.
func IsS3(uri string) bool {
	return strings.HasPrefix(uri, s3Scheme)
}

// ParseS3 splits s3://bucket/key into its bucket and key.
func ParseS3(uri string) (bucket, key string, err error) {
	if !IsS3(uri) {
		return "", "", fmt.Errorf("%w: %q", ErrBadURI, uri)
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(uri, s3Scheme), "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadURI, uri)
	}
	return bucket, key, nil
}

func (s *Source) s3Client(ctx context.Context) (S3API, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	var opts []func(*config.LoadOptions) error
	if s.region != "" {
		opts = append(opts, config.WithRegion(s.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	s.client = s3.NewFromConfig(cfg)
	slog.Info("s3 client ready", "region", cfg.Region)
	return s.client, nil
}

// Open returns the export stream for uri and its base file name. The caller
// closes the stream.
func (s *Source) Open(ctx context.Context, uri string) (io.ReadCloser, string, error) {
	if !IsS3(uri) {
		f, err := os.Open(uri)
		if err != nil {
			return nil, "", fmt.Errorf("open export: %w", err)
		}
		return f, filepath.Base(uri), nil
	}

	bucket, key, err := ParseS3(uri)
	if err != nil {
		return nil, "", err
	}
	if key == "" || strings.HasSuffix(key, "/") {
		return nil, "", fmt.Errorf("%w: %q names a prefix, not an object", ErrBadURI, uri)
	}
	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, "", err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("get s3 object %s: %w", uri, err)
	}
	slog.Debug("s3 object opened", "bucket", bucket, "key", key, "size", aws.ToInt64(out.ContentLength))
	return out.Body, path.Base(key), nil
}

// List expands uri into the exports it names. A directory or an s3 prefix
// ending in "/" yields its *.csv entries in name order; anything else is
// returned unchanged.
func (s *Source) List(ctx context.Context, uri string) ([]string, error) {
	if IsS3(uri) {
		return s.listS3(ctx, uri)
	}

	fi, err := os.Stat(uri)
	if err != nil {
		return nil, fmt.Errorf("stat export: %w", err)
	}
	if !fi.IsDir() {
		return []string{uri}, nil
	}
	entries, err := os.ReadDir(uri)
	if err != nil {
		return nil, fmt.Errorf("read export dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && isCSV(e.Name()) {
			out = append(out, filepath.Join(uri, e.Name()))
		}
	}
	return out, nil
}

func (s *Source) listS3(ctx context.Context, uri string) ([]string, error) {
	bucket, prefix, err := ParseS3(uri)
	if err != nil {
		return nil, err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		return []string{uri}, nil
	}
	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	var out []string
	p := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", uri, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if isCSV(key) {
				out = append(out, s3Scheme+bucket+"/"+key)
			}
		}
	}
	sort.Strings(out)
	slog.Info("s3 exports listed", "uri", uri, "count", len(out))
	return out, nil
}

func isCSV(name string) bool {
	return strings.EqualFold(path.Ext(name), ".csv")
}
