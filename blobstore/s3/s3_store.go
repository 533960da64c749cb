package s3

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/bkmeans/blobstore"
)

// Client is the subset of the S3 API used by Store.
type Client interface {
	manager.DownloadAPIClient
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client Client
	bucket string
	opts   options
}

type options struct {
	prefix       string
	region       string
	endpoint     string
	usePathStyle bool
	partSize     int64
	concurrency  int
}

// Option configures a Store.
type Option func(*options)

// WithPrefix prepends prefix to all keys (e.g. "datasets/").
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithRegion overrides the region from the shared AWS configuration.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithEndpoint sets a custom endpoint, e.g. for LocalStack.
func WithEndpoint(endpoint string, usePathStyle bool) Option {
	return func(o *options) {
		o.endpoint = endpoint
		o.usePathStyle = usePathStyle
	}
}

// WithPartSize sets the size of each ranged GET.
func WithPartSize(n int64) Option {
	return func(o *options) {
		o.partSize = n
	}
}

// WithConcurrency bounds the parallel ranged GETs per object.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		partSize:    manager.DefaultDownloadPartSize,
		concurrency: manager.DefaultDownloadConcurrency,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// New creates a Store using the default AWS credential chain.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	o := applyOptions(optFns)

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
		}
		so.UsePathStyle = o.usePathStyle
	})
	return &Store{client: client, bucket: bucket, opts: o}, nil
}

// NewStore creates a Store around an existing client.
func NewStore(client Client, bucket string, optFns ...Option) *Store {
	return &Store{client: client, bucket: bucket, opts: applyOptions(optFns)}
}

func (s *Store) key(name string) string {
	return path.Join(s.opts.prefix, name)
}

// Open downloads the object into memory.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	buf := manager.NewWriteAtBuffer(nil)
	downloader := manager.NewDownloader(s.client, func(d *manager.Downloader) {
		d.PartSize = s.opts.partSize
		d.Concurrency = s.opts.concurrency
	})

	n, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, blobstore.ErrNotFound)
		}
		return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, err)
	}

	return blobstore.NewBytesBlob(buf.Bytes()[:n], nil), nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	return errors.As(err, &nf)
}
