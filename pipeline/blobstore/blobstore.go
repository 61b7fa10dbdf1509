package blobstore

import (
	"context"
	"time"

	"github.com/aldress/medallion/pkg/errors"
)

// Package-specific error codes for blob storage.
var (
	ErrBlobNotFound      = errors.MustNewCode("blobstore.blob_not_found")
	ErrBlobExists        = errors.MustNewCode("blobstore.blob_exists")
	ErrContainerNotFound = errors.MustNewCode("blobstore.container_not_found")
	ErrEngineNotFound    = errors.MustNewCode("blobstore.engine_not_found")
	ErrNoEngines         = errors.MustNewCode("blobstore.no_engines_available")
	ErrConnectionFailed  = errors.MustNewCode("blobstore.connection_failed")
)

// BlobInfo describes one stored blob as returned by List.
type BlobInfo struct {
	Name         string
	Size         int64
	LastModified time.Time
	Metadata     map[string]string
}

// Store is the container-scoped key→bytes interface the pipeline consumes.
// Put with overwrite=false must fail with ErrBlobExists when the blob is
// already present; Get of a missing blob must fail with ErrBlobNotFound.
type Store interface {
	// Type returns the storage engine identifier.
	Type() string

	// EnsureContainer creates the container if it does not already exist.
	EnsureContainer(ctx context.Context, container string) error

	// List enumerates blobs in a container whose names start with prefix,
	// in lexicographic name order.
	List(ctx context.Context, container, prefix string) ([]BlobInfo, error)

	// Get downloads a blob's full content.
	Get(ctx context.Context, container, name string) ([]byte, error)

	// Put uploads a blob with the given user metadata.
	Put(ctx context.Context, container, name string, data []byte, metadata map[string]string, overwrite bool) error
}
