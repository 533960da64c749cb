package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore opens named blobs for reading.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Reader
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// bytesBlob serves a blob from a byte slice. done runs once on Close.
type bytesBlob struct {
	*bytes.Reader
	done func() error
}

// NewBytesBlob returns a Blob reading data. done, if not nil, runs on the
// first Close.
func NewBytesBlob(data []byte, done func() error) Blob {
	return &bytesBlob{Reader: bytes.NewReader(data), done: done}
}

func (b *bytesBlob) Close() error {
	if b.done == nil {
		return nil
	}
	done := b.done
	b.done = nil
	return done()
}
