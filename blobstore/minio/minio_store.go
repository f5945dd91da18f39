// Package minio provides a blobstore.BlobStore backed by MinIO or any other
// S3-compatible object store reachable through the MinIO client.
package minio

import (
	"context"
	"io"
	"path"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/impactgo/blobstore"
)

// Compile-time check to ensure Store satisfies the blobstore contract.
var _ blobstore.BlobStore = (*Store)(nil)

// Store implements blobstore.BlobStore for MinIO.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a new MinIO blob store.
// rootPrefix is prepended to all object names.
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open downloads the named artifact into memory and returns it as a blob.
func (s *Store) Open(name string) (blobstore.Blob, error) {
	ctx := context.Background()

	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	return blobstore.NewBytesBlob(data), nil
}
