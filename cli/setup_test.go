package cli

import (
	"testing"

	"github.com/aldress/medallion/pipeline/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStore_SelectsConfiguredEngine(t *testing.T) {
	cfg := config.LoadDefaultConfig()
	cfg.Storage.Engine = config.EngineMemory

	store, err := buildStore(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "MEMORY", store.Type())
}

func TestBuildStore_Filesystem(t *testing.T) {
	cfg := config.LoadDefaultConfig()
	cfg.Storage.Engine = config.EngineFilesystem
	cfg.Storage.Filesystem.RootPath = t.TempDir()

	store, err := buildStore(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "FILESYSTEM", store.Type())
}

func TestBuildStore_UnregisteredEngine(t *testing.T) {
	// Azure is selected but no connection string is set, so the engine is
	// never registered and selecting it must fail.
	cfg := config.LoadDefaultConfig()
	cfg.Storage.Engine = config.EngineAzure
	cfg.Storage.Azure.ConnectionString = ""

	_, err := buildStore(cfg, zerolog.Nop())
	require.Error(t, err)
}
