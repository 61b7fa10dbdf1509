package blobstore

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct{ name string }

func (f *fakeStore) Type() string                                    { return f.name }
func (f *fakeStore) EnsureContainer(context.Context, string) error   { return nil }
func (f *fakeStore) List(context.Context, string, string) ([]BlobInfo, error) {
	return nil, nil
}
func (f *fakeStore) Get(context.Context, string, string) ([]byte, error) { return nil, nil }
func (f *fakeStore) Put(context.Context, string, string, []byte, map[string]string, bool) error {
	return nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register(&fakeStore{name: "MEMORY"})

	engine, err := r.Get("MEMORY")
	require.NoError(t, err)
	assert.Equal(t, "MEMORY", engine.Type())

	_, err = r.Get("AZURE")
	require.Error(t, err)
}

func TestRegistry_Default(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	_, err := r.Default()
	require.Error(t, err)

	r.Register(&fakeStore{name: "FILESYSTEM"})
	require.Error(t, r.SetDefault("S3"))
	require.NoError(t, r.SetDefault("FILESYSTEM"))

	engine, err := r.Default()
	require.NoError(t, err)
	assert.Equal(t, "FILESYSTEM", engine.Type())
}

func TestRegistry_Status(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register(&fakeStore{name: "MEMORY"})
	r.Register(&fakeStore{name: "AZURE"})
	require.NoError(t, r.SetDefault("AZURE"))

	status := r.Status()
	assert.Equal(t, "AZURE", status["default_engine"])
	assert.Equal(t, 2, status["total_engines"])
	assert.True(t, r.Exists("MEMORY"))
	assert.False(t, r.Exists("S3"))
	assert.Len(t, r.List(), 2)
}
