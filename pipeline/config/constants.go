package config

// Storage engine identifiers accepted in the storage.engine field.
const (
	EngineMemory     = "MEMORY"
	EngineFilesystem = "FILESYSTEM"
	EngineAzure      = "AZURE"
	EngineS3         = "S3"
)

// Default container names for the silver and gold layers.
const (
	DefaultSilverContainer = "silver"
	DefaultGoldContainer   = "gold"
)

// DefaultFilesystemRoot is where the filesystem engine keeps its containers
// when no root path is configured.
const DefaultFilesystemRoot = "./data"

// KnownEngines lists every storage engine identifier the pipeline accepts.
func KnownEngines() []string {
	return []string{EngineMemory, EngineFilesystem, EngineAzure, EngineS3}
}

// IsKnownEngine checks whether an engine identifier is recognized.
func IsKnownEngine(engine string) bool {
	for _, known := range KnownEngines() {
		if engine == known {
			return true
		}
	}
	return false
}
