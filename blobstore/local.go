package blobstore

import (
	"context"
	"io"
	"path/filepath"

	"github.com/hupe1980/bkmeans/internal/mmap"
)

// LocalStore implements BlobStore using the local file system.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
// An empty root resolves names against the working directory, and
// absolute names are used as is.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Open maps the file read-only and advises sequential access. The blob
// reads through the mapping until Close.
func (s *LocalStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := name
	if s.root != "" && !filepath.IsAbs(name) {
		path = filepath.Join(s.root, name)
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	if err := m.AdviseSequential(); err != nil {
		_ = m.Close()
		return nil, err
	}
	return &mappedBlob{SectionReader: io.NewSectionReader(m, 0, int64(m.Size())), m: m}, nil
}

// mappedBlob reads a memory-mapped file through its io.ReaderAt.
type mappedBlob struct {
	*io.SectionReader
	m *mmap.Mapping
}

func (b *mappedBlob) Close() error {
	return b.m.Close()
}
