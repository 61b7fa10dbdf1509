package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aldress/medallion/pipeline/blobstore"
	"github.com/aldress/medallion/pkg/errors"
)

// Type is the storage engine identifier for this engine.
const Type = "MEMORY"

type blob struct {
	data         []byte
	metadata     map[string]string
	lastModified time.Time
}

// Store implements an in-memory blob store, used by tests and local dev.
type Store struct {
	containers map[string]map[string]*blob
	mu         sync.RWMutex

	// now is swappable so tests can pin LastModified values.
	now func() time.Time
}

// NewStore creates an empty in-memory blob store.
func NewStore() *Store {
	return &Store{
		containers: make(map[string]map[string]*blob),
		now:        time.Now,
	}
}

// Type returns the storage engine identifier.
func (s *Store) Type() string { return Type }

// EnsureContainer creates the container if missing.
func (s *Store) EnsureContainer(_ context.Context, container string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.containers[container]; !ok {
		s.containers[container] = make(map[string]*blob)
	}
	return nil
}

// List enumerates blobs by prefix in lexicographic name order.
func (s *Store) List(_ context.Context, container, prefix string) ([]blobstore.BlobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.containers[container]
	if !ok {
		return nil, errors.Newf(blobstore.ErrContainerNotFound, "container %q does not exist", container)
	}

	var infos []blobstore.BlobInfo
	for name, b := range c {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		infos = append(infos, blobstore.BlobInfo{
			Name:         name,
			Size:         int64(len(b.data)),
			LastModified: b.lastModified,
			Metadata:     copyMetadata(b.metadata),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Get downloads a blob's content.
func (s *Store) Get(_ context.Context, container, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.containers[container]
	if !ok {
		return nil, errors.Newf(blobstore.ErrContainerNotFound, "container %q does not exist", container)
	}
	b, ok := c[name]
	if !ok {
		return nil, errors.Newf(blobstore.ErrBlobNotFound, "blob %q not found", name).AddContext("container", container)
	}
	data := make([]byte, len(b.data))
	copy(data, b.data)
	return data, nil
}

// Put stores a blob with metadata.
func (s *Store) Put(_ context.Context, container, name string, data []byte, metadata map[string]string, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.containers[container]
	if !ok {
		return errors.Newf(blobstore.ErrContainerNotFound, "container %q does not exist", container)
	}
	if _, exists := c[name]; exists && !overwrite {
		return errors.Newf(blobstore.ErrBlobExists, "blob %q already exists", name).AddContext("container", container)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	c[name] = &blob{
		data:         stored,
		metadata:     copyMetadata(metadata),
		lastModified: s.now(),
	}
	return nil
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
