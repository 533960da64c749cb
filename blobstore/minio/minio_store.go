package minio

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/hupe1980/bkmeans/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store implements blobstore.BlobStore for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a new MinIO blob store.
// bucket is the MinIO bucket name.
// rootPrefix is prepended to all keys (e.g. "datasets/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

// NewEnvStore connects to endpoint with credentials taken from
// MINIO_ACCESS_KEY and MINIO_SECRET_KEY (or MINIO_ROOT_USER and
// MINIO_ROOT_PASSWORD).
func NewEnvStore(endpoint string, secure bool, bucket, rootPrefix string) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewEnvMinio(),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return NewStore(client, bucket, rootPrefix), nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open reads the whole object into memory.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrap(key, err)
	}
	defer obj.Close()

	// GetObject is lazy; Stat surfaces missing keys before the read.
	info, err := obj.Stat()
	if err != nil {
		return nil, s.wrap(key, err)
	}

	data := make([]byte, info.Size)
	if _, err := io.ReadFull(obj, data); err != nil {
		return nil, s.wrap(key, err)
	}
	return blobstore.NewBytesBlob(data, nil), nil
}

func (s *Store) wrap(key string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("minio %s/%s: %w", s.bucket, key, blobstore.ErrNotFound)
	}
	return fmt.Errorf("minio %s/%s: %w", s.bucket, key, err)
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound" || code == "NoSuchBucket"
}
