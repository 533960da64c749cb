package cli

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hupe1980/bkmeans"
	"github.com/hupe1980/bkmeans/blobstore"
	"github.com/hupe1980/bkmeans/blobstore/minio"
	blobs3 "github.com/hupe1980/bkmeans/blobstore/s3"
	"github.com/hupe1980/bkmeans/dataset"
)

// inputLocation is a parsed --input value.
type inputLocation struct {
	scheme   string // "", "s3", "minio" or "minio+http"
	endpoint string // minio only
	bucket   string
	key      string
}

// parseInput recognizes s3://bucket/key, minio://host:port/bucket/key and
// minio+http://host:port/bucket/key. Anything else is a local path.
func parseInput(input string) (inputLocation, error) {
	scheme, _, ok := strings.Cut(input, "://")
	if !ok {
		return inputLocation{key: input}, nil
	}

	switch scheme {
	case "s3", "minio", "minio+http":
	default:
		return inputLocation{}, fmt.Errorf("%w: unsupported input scheme %q", bkmeans.ErrInvalidConfig, scheme)
	}

	u, err := url.Parse(input)
	if err != nil {
		return inputLocation{}, fmt.Errorf("%w: input %q: %v", bkmeans.ErrInvalidConfig, input, err)
	}

	loc := inputLocation{scheme: scheme}
	p := strings.TrimPrefix(u.Path, "/")

	if scheme == "s3" {
		loc.bucket, loc.key = u.Host, p
	} else {
		loc.endpoint = u.Host
		loc.bucket, loc.key, _ = strings.Cut(p, "/")
	}

	if loc.bucket == "" || loc.key == "" {
		return inputLocation{}, fmt.Errorf("%w: input %q needs a bucket and a key", bkmeans.ErrInvalidConfig, input)
	}
	if loc.scheme != "s3" && loc.endpoint == "" {
		return inputLocation{}, fmt.Errorf("%w: input %q needs an endpoint", bkmeans.ErrInvalidConfig, input)
	}
	return loc, nil
}

// store returns the blob store serving loc.
func (loc inputLocation) store(ctx context.Context) (blobstore.BlobStore, error) {
	switch loc.scheme {
	case "s3":
		return blobs3.New(ctx, loc.bucket)
	case "minio", "minio+http":
		return minio.NewEnvStore(loc.endpoint, loc.scheme == "minio", loc.bucket, "")
	default:
		return blobstore.NewLocalStore(""), nil
	}
}

// loadInput reads the CSV named by input into a frame.
func loadInput(ctx context.Context, input, column string) (*dataset.Frame, error) {
	loc, err := parseInput(input)
	if err != nil {
		return nil, err
	}
	store, err := loc.store(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.Load(ctx, store, loc.key, column)
}
