package filesystem

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aldress/medallion/pipeline/blobstore"
	"github.com/aldress/medallion/pkg/errors"
)

// Type is the storage engine identifier for this engine.
const Type = "FILESYSTEM"

// Package-specific error codes for filesystem storage.
var (
	ErrCreateDirFailed = errors.MustNewCode("filesystem.create_dir_failed")
	ErrReadFailed      = errors.MustNewCode("filesystem.read_failed")
	ErrWriteFailed     = errors.MustNewCode("filesystem.write_failed")
)

const metadataSuffix = ".meta.json"

// Store implements a blob store over a local directory tree. Containers map
// to directories and blob metadata lives in a JSON sidecar next to each blob.
type Store struct {
	basePath string
	mu       sync.RWMutex
}

// NewStore creates a filesystem blob store rooted at basePath.
func NewStore(basePath string) *Store {
	return &Store{basePath: basePath}
}

// Type returns the storage engine identifier.
func (s *Store) Type() string { return Type }

func (s *Store) containerPath(container string) string {
	return filepath.Join(s.basePath, container)
}

func (s *Store) blobPath(container, name string) string {
	return filepath.Join(s.containerPath(container), filepath.FromSlash(name))
}

// EnsureContainer creates the container directory if missing.
func (s *Store) EnsureContainer(_ context.Context, container string) error {
	if err := os.MkdirAll(s.containerPath(container), 0755); err != nil {
		return errors.New(ErrCreateDirFailed, "failed to create container directory", err).AddContext("container", container)
	}
	return nil
}

// List walks the container directory and returns blobs matching the prefix
// in lexicographic name order. Metadata sidecars are not listed as blobs.
func (s *Store) List(_ context.Context, container, prefix string) ([]blobstore.BlobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root := s.containerPath(container)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, errors.Newf(blobstore.ErrContainerNotFound, "container %q does not exist", container)
	}

	var infos []blobstore.BlobInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, metadataSuffix) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		infos = append(infos, blobstore.BlobInfo{
			Name:         name,
			Size:         info.Size(),
			LastModified: info.ModTime(),
			Metadata:     s.readMetadata(path),
		})
		return nil
	})
	if err != nil {
		return nil, errors.New(ErrReadFailed, "failed to walk container directory", err).AddContext("container", container)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Get downloads a blob's content.
func (s *Store) Get(_ context.Context, container, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.blobPath(container, name))
	if os.IsNotExist(err) {
		return nil, errors.Newf(blobstore.ErrBlobNotFound, "blob %q not found", name).AddContext("container", container)
	}
	if err != nil {
		return nil, errors.New(ErrReadFailed, "failed to read blob file", err).AddContext("blob", name)
	}
	return data, nil
}

// Put writes the blob and its metadata sidecar.
func (s *Store) Put(_ context.Context, container, name string, data []byte, metadata map[string]string, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.blobPath(container, name)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.Newf(blobstore.ErrBlobExists, "blob %q already exists", name).AddContext("container", container)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.New(ErrCreateDirFailed, "failed to create blob directory", err).AddContext("blob", name)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(ErrWriteFailed, "failed to write blob file", err).AddContext("blob", name)
	}
	if len(metadata) > 0 {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return errors.New(ErrWriteFailed, "failed to encode blob metadata", err).AddContext("blob", name)
		}
		if err := os.WriteFile(path+metadataSuffix, encoded, 0644); err != nil {
			return errors.New(ErrWriteFailed, "failed to write blob metadata", err).AddContext("blob", name)
		}
	}
	return nil
}

func (s *Store) readMetadata(blobPath string) map[string]string {
	data, err := os.ReadFile(blobPath + metadataSuffix)
	if err != nil {
		return nil
	}
	var metadata map[string]string
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil
	}
	return metadata
}
