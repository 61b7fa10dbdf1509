package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aldress/medallion/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	cfg := LoadDefaultConfig()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, EngineAzure, cfg.Storage.Engine)
	assert.Equal(t, DefaultSilverContainer, cfg.Pipeline.SilverContainer)
	assert.Equal(t, DefaultGoldContainer, cfg.Pipeline.GoldContainer)
	assert.Empty(t, cfg.Pipeline.Schedule)
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	content := `
storage:
  engine: MEMORY
pipeline:
  silver_container: silver-dev
`
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, EngineMemory, cfg.Storage.Engine)
	assert.Equal(t, "silver-dev", cfg.Pipeline.SilverContainer)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultGoldContainer, cfg.Pipeline.GoldContainer)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yml")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, ErrConfigFileReadFailed))
}

func TestValidate_UnknownEngine(t *testing.T) {
	cfg := LoadDefaultConfig()
	cfg.Storage.Engine = "TAPE"
	cfg.Storage.Azure.ConnectionString = "unused"

	err := cfg.Validate()
	require.Error(t, err)
}

func TestValidate_AzureRequiresConnectionString(t *testing.T) {
	cfg := LoadDefaultConfig()
	cfg.Storage.Engine = EngineAzure
	cfg.Storage.Azure.ConnectionString = ""

	require.Error(t, cfg.Validate())

	cfg.Storage.Azure.ConnectionString = "DefaultEndpointsProtocol=https;AccountName=dev;AccountKey=key"
	require.NoError(t, cfg.Validate())
}

func TestValidate_S3RequiresEndpoint(t *testing.T) {
	cfg := LoadDefaultConfig()
	cfg.Storage.Engine = EngineS3

	require.Error(t, cfg.Validate())

	cfg.Storage.S3.Endpoint = "localhost:9000"
	require.NoError(t, cfg.Validate())
}

func TestValidate_ContainerNames(t *testing.T) {
	cfg := LoadDefaultConfig()
	cfg.Storage.Engine = EngineMemory
	cfg.Pipeline.GoldContainer = ""

	require.Error(t, cfg.Validate())
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := LoadDefaultConfig()
	cfg.Storage.Engine = EngineFilesystem
	cfg.Pipeline.Schedule = "0 2 * * *"

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, EngineFilesystem, loaded.Storage.Engine)
	assert.Equal(t, "0 2 * * *", loaded.Pipeline.Schedule)
}
