package blobstore

import (
	"path/filepath"

	"github.com/hupe1980/impactgo/internal/mmap"
)

// LocalStore implements BlobStore using the local file system.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Open opens a blob for reading. Local files are memory mapped; index
// artifacts are read once at load and shared for the engine's lifetime.
func (s *LocalStore) Open(name string) (Blob, error) {
	m, err := mmap.Open(filepath.Join(s.root, name))
	if err != nil {
		return nil, err
	}
	return &localBlob{BytesBlob: *NewBytesBlob(m.Bytes()), m: m}, nil
}

// localBlob serves reads through the shared in-memory blob surface over the
// mapped bytes; only the mapping lifecycle is local.
type localBlob struct {
	BytesBlob
	m *mmap.Mapping
}

// Close releases the mapping. The blob's bytes are invalid afterwards.
func (b *localBlob) Close() error {
	return b.m.Close()
}
