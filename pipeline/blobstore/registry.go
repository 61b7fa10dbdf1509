package blobstore

import (
	"sync"

	"github.com/aldress/medallion/pkg/errors"
	"github.com/rs/zerolog"
)

// Registry manages the available storage engines. Engines register under a
// stable name ("MEMORY", "FILESYSTEM", "AZURE", "S3") and one of them is the
// default used by the pipeline.
type Registry struct {
	engines       map[string]Store
	defaultEngine string
	mu            sync.RWMutex
	logger        zerolog.Logger
}

// NewRegistry creates an empty engine registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		engines: make(map[string]Store),
		logger:  logger,
	}
}

// Register adds an engine to the registry under its own type name.
func (r *Registry) Register(engine Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[engine.Type()] = engine
}

// SetDefault marks the named engine as the default. The engine must exist.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.engines[name]; !ok {
		return errors.Newf(ErrEngineNotFound, "storage engine %q not registered", name)
	}
	r.defaultEngine = name
	return nil
}

// Get returns an engine by name.
func (r *Registry) Get(name string) (Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if engine, ok := r.engines[name]; ok {
		return engine, nil
	}
	return nil, errors.Newf(ErrEngineNotFound, "storage engine %q not registered", name)
}

// Default returns the default engine.
func (r *Registry) Default() (Store, error) {
	r.mu.RLock()
	name := r.defaultEngine
	r.mu.RUnlock()
	if name == "" {
		return nil, errors.New(ErrNoEngines, "no default storage engine configured", nil)
	}
	return r.Get(name)
}

// Exists reports whether the named engine is registered.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.engines[name]
	return ok
}

// List returns the registered engine names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	return names
}

// Status returns a per-engine status map for diagnostics.
func (r *Registry) Status() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	status := make(map[string]interface{}, len(r.engines)+2)
	for name := range r.engines {
		status[name] = map[string]interface{}{"available": true}
	}
	status["default_engine"] = r.defaultEngine
	status["total_engines"] = len(r.engines)
	return status
}
