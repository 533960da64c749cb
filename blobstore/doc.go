// Package blobstore provides read access to dataset files wherever they live.
//
// BlobStore is the interface for opening named blobs. Implementations must
// be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped
//   - MemoryStore: in-memory blobs for tests
//   - s3.Store: Amazon S3 with concurrent ranged downloads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	}
//
// Missing blobs must satisfy errors.Is(err, ErrNotFound).
package blobstore
