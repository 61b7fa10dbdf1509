package cli

import (
	"github.com/aldress/medallion/pipeline/blobstore"
	"github.com/aldress/medallion/pipeline/blobstore/azure"
	"github.com/aldress/medallion/pipeline/blobstore/filesystem"
	"github.com/aldress/medallion/pipeline/blobstore/memory"
	"github.com/aldress/medallion/pipeline/blobstore/s3"
	"github.com/aldress/medallion/pipeline/config"
	"github.com/aldress/medallion/pipeline/gold"
	"github.com/rs/zerolog"
)

// defaultConfigFile is tried when --config is not given.
const defaultConfigFile = "medallion.yml"

// loadConfig reads the configured or default config file, falling back to
// built-in defaults when neither exists.
func loadConfig() (*config.Config, bool, error) {
	if cfgFile != "" {
		cfg, err := config.LoadConfig(cfgFile)
		return cfg, true, err
	}
	if cfg, err := config.LoadConfig(defaultConfigFile); err == nil {
		return cfg, true, nil
	}
	return config.LoadDefaultConfig(), false, nil
}

// buildStore registers every configured storage engine and returns the one
// selected in the configuration.
func buildStore(cfg *config.Config, logger zerolog.Logger) (blobstore.Store, error) {
	registry := blobstore.NewRegistry(logger)
	registry.Register(memory.NewStore())
	registry.Register(filesystem.NewStore(cfg.Storage.Filesystem.RootPath))

	if cfg.Storage.Azure.ConnectionString != "" {
		store, err := azure.NewStoreFromConnectionString(cfg.Storage.Azure.ConnectionString)
		if err != nil {
			return nil, err
		}
		registry.Register(store)
	}
	if cfg.Storage.S3.Endpoint != "" {
		store, err := s3.NewStore(s3.Config{
			Endpoint:  cfg.Storage.S3.Endpoint,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			Region:    cfg.Storage.S3.Region,
			UseSSL:    cfg.Storage.S3.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		registry.Register(store)
	}

	if err := registry.SetDefault(cfg.Storage.Engine); err != nil {
		return nil, err
	}
	return registry.Default()
}

// newProcessor wires a processor from the loaded configuration.
func newProcessor(cfg *config.Config, logger zerolog.Logger) (*gold.Processor, error) {
	store, err := buildStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	return gold.NewProcessor(store, cfg.Pipeline.SilverContainer, cfg.Pipeline.GoldContainer, logger), nil
}
