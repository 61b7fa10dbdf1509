package config

import (
	"os"

	"github.com/aldress/medallion/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the pipeline configuration
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`      // "json" or "console"
	FilePath   string `yaml:"file_path"`   // Path to log file
	Console    bool   `yaml:"console"`     // Whether to log to console
	MaxSize    int    `yaml:"max_size"`    // Max file size in MB
	MaxBackups int    `yaml:"max_backups"` // Max number of backup files
	MaxAge     int    `yaml:"max_age"`     // Max age in days
	Cleanup    bool   `yaml:"cleanup"`     // Whether to cleanup log file on startup
}

// StorageConfig selects the blob storage engine and holds per-engine settings
type StorageConfig struct {
	Engine     string           `yaml:"engine"`
	Azure      AzureConfig      `yaml:"azure"`
	S3         S3Config         `yaml:"s3"`
	Filesystem FilesystemConfig `yaml:"filesystem"`
}

// AzureConfig holds Azure Blob Storage settings
type AzureConfig struct {
	ConnectionString string `yaml:"connection_string"`
}

// S3Config holds S3-compatible object storage settings
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// FilesystemConfig holds local filesystem storage settings
type FilesystemConfig struct {
	RootPath string `yaml:"root_path"`
}

// PipelineConfig holds the silver-to-gold run settings
type PipelineConfig struct {
	SilverContainer string `yaml:"silver_container"`
	GoldContainer   string `yaml:"gold_container"`
	// Schedule is a cron expression; empty means run once and exit.
	Schedule string `yaml:"schedule"`
}

// LoadDefaultConfig returns a default configuration
func LoadDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			FilePath:   "logs/medallion.log",
			Console:    true,
			MaxSize:    100, // 100MB
			MaxBackups: 3,
			MaxAge:     7, // 7 days
			Cleanup:    false,
		},
		Storage: StorageConfig{
			Engine: EngineAzure,
			Filesystem: FilesystemConfig{
				RootPath: DefaultFilesystemRoot,
			},
		},
		Pipeline: PipelineConfig{
			SilverContainer: DefaultSilverContainer,
			GoldContainer:   DefaultGoldContainer,
		},
	}
}

// LoadConfig loads configuration from a file and overlays it on the defaults
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.New(ErrConfigFileReadFailed, "failed to read config file", err)
	}

	config := LoadDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.New(ErrConfigFileParseFailed, "failed to parse config file", err)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.New(ErrConfigValidationFailed, "configuration validation failed", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.New(ErrConfigFileMarshalFailed, "failed to marshal config", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.New(ErrConfigFileWriteFailed, "failed to write config file", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return errors.New(ErrStorageValidationFailed, "storage validation failed", err)
	}

	if err := c.Pipeline.Validate(); err != nil {
		return err
	}

	return nil
}

// Validate validates the storage configuration
func (s *StorageConfig) Validate() error {
	if !IsKnownEngine(s.Engine) {
		return errors.Newf(ErrUnknownStorageEngine, "unknown storage engine %q", s.Engine)
	}

	switch s.Engine {
	case EngineAzure:
		if s.Azure.ConnectionString == "" {
			return errors.New(ErrConnectionStringMissing, "azure connection string is required", nil)
		}
	case EngineS3:
		if s.S3.Endpoint == "" {
			return errors.New(ErrS3EndpointMissing, "s3 endpoint is required", nil)
		}
	}

	return nil
}

// Validate validates the pipeline configuration
func (p *PipelineConfig) Validate() error {
	if p.SilverContainer == "" {
		return errors.New(ErrContainerNameMissing, "silver container name is required", nil)
	}
	if p.GoldContainer == "" {
		return errors.New(ErrContainerNameMissing, "gold container name is required", nil)
	}
	return nil
}
