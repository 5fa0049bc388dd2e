package identity

import "sync"

// FieldConfig declares, for one artifact type, the preferred field names to
// consult (in priority order) when looking for a name-, path-, or
// hash-shaped identity value.
type FieldConfig struct {
	NameFields []string
	PathFields []string
	HashFields []string
}

// Registry maps artifact type to its FieldConfig. It is built once and
// passed explicitly into an Extractor rather than held in a hidden global
// singleton; Register can still add or replace entries, under a lock.
type Registry struct {
	mu         sync.RWMutex
	byArtifact map[string]FieldConfig
}

// NewRegistry returns a Registry pre-populated with the built-in defaults
// for common forensic artifact types, covering the name/path/hash field
// aliases observed across Prefetch, ShimCache, AmCache, SRUM, Event Logs,
// LNK, Jump List, USN Journal, and MFT style feathers.
func NewRegistry() *Registry {
	r := &Registry{byArtifact: make(map[string]FieldConfig)}
	for artifact, cfg := range builtinFieldConfigs {
		r.byArtifact[artifact] = cfg
	}
	return r
}

// Register adds or replaces the FieldConfig for an artifact type. Intended
// for per-execution overrides supplied via pipeline configuration.
func (r *Registry) Register(artifactType string, cfg FieldConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byArtifact[artifactType] = cfg
}

// Lookup returns the FieldConfig registered for artifactType.
func (r *Registry) Lookup(artifactType string) (FieldConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.byArtifact[artifactType]
	return cfg, ok
}

// builtinFieldConfigs is the built-in default set: representative
// name/path/hash field aliases for common artifact types. Real deployments
// extend this via Register with site-specific feather schemas.
var builtinFieldConfigs = map[string]FieldConfig{
	"prefetch": {
		NameFields: []string{"executable_name", "program_name", "exe_name", "application_name", "name"},
		PathFields: []string{"full_path", "executable_path", "volume_path", "path"},
		HashFields: []string{"prefetch_hash", "hash"},
	},
	"shimcache": {
		NameFields: []string{"filename", "file_name", "name"},
		PathFields: []string{"path", "full_path", "file_path"},
		HashFields: []string{"sha1", "sha256", "hash"},
	},
	"amcache": {
		NameFields: []string{"program_name", "file_name", "name"},
		PathFields: []string{"full_path", "path", "lower_case_long_path"},
		HashFields: []string{"sha1", "file_id", "hash"},
	},
	"srum": {
		NameFields: []string{"app_name", "application", "exe_name", "name"},
		PathFields: []string{"app_path", "full_path", "path"},
		HashFields: []string{},
	},
	"eventlogs": {
		NameFields: []string{"process_name", "image_name", "provider_name", "name"},
		PathFields: []string{"image_path", "command_line", "path"},
		HashFields: []string{"hash", "sha256"},
	},
	"registry": {
		NameFields: []string{"value_name", "key_name", "name"},
		PathFields: []string{"key_path", "path", "value_path"},
		HashFields: []string{},
	},
	"lnk": {
		NameFields: []string{"target_name", "name"},
		PathFields: []string{"target_path", "local_path", "path"},
		HashFields: []string{},
	},
	"jumplist": {
		NameFields: []string{"app_id", "application_name", "name"},
		PathFields: []string{"target_path", "path"},
		HashFields: []string{},
	},
	"usnjournal": {
		NameFields: []string{"file_name", "name"},
		PathFields: []string{"full_path", "parent_path", "path"},
		HashFields: []string{},
	},
	"mft": {
		NameFields: []string{"file_name", "name"},
		PathFields: []string{"full_path", "parent_path", "path"},
		HashFields: []string{"md5", "sha1", "hash"},
	},
}

// defaultFieldConfig is consulted when an artifact type has no registered
// entry; Extractor falls back further to the scoring heuristic over the
// record's own field names when even these produce nothing.
var defaultFieldConfig = FieldConfig{
	NameFields: []string{"name", "file_name", "filename", "process_name", "application_name", "exe_name", "program_name"},
	PathFields: []string{"path", "full_path", "file_path", "target_path", "directory"},
	HashFields: []string{"hash", "sha1", "sha256", "md5"},
}
