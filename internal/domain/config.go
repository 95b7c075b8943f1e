// Package domain defines core business entities and value objects for RAI.
//
// The domain layer is independent of infrastructure concerns and represents
// pure data structures shared by the completion gateway, the patch
// synthesizer, and the run recorder.
package domain

// Config mirrors ~/.rai/config.yaml after environment overrides have been
// resolved. It is built once at startup and treated as immutable afterwards;
// core components never read ambient environment state themselves.
type Config struct {
	ConfigFormatVersion string             `yaml:"config_format_version"`
	Azure               AzureSettings      `yaml:"azure"`
	Generation          GenerationSettings `yaml:"generation"`
	Refactor            RefactorSettings   `yaml:"refactor"`
	Runs                RunLogSettings     `yaml:"runs"`
}

// AzureSettings identifies the chat-completion deployment to call.
type AzureSettings struct {
	Endpoint   string `yaml:"endpoint"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`

	// APIKey is resolved from the environment only and is never written
	// back to the config file.
	APIKey string `yaml:"-"`
}

// GenerationSettings captures default sampling parameters and the system
// prompt used in generate mode.
type GenerationSettings struct {
	SystemPrompt   string  `yaml:"system_prompt"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout"`
}

// RefactorSettings controls refactor mode.
type RefactorSettings struct {
	SystemPrompt string `yaml:"system_prompt"`

	// StructuralMarker is the token that starts real file content in the
	// target language, e.g. "<?php". Model commentary before the marker
	// is discarded during extraction.
	StructuralMarker string `yaml:"structural_marker"`

	// RepoRoot, when set, is used to derive the repo-relative display
	// path placed in diff headers.
	RepoRoot string `yaml:"repo_root"`
}

// RunLogSettings selects where run records are persisted.
type RunLogSettings struct {
	// Storage is "jsonl" (default) or "sqlite".
	Storage string `yaml:"storage"`
	Path    string `yaml:"path"`
}

// Run record storage backends.
const (
	RunStorageJSONL  = "jsonl"
	RunStorageSQLite = "sqlite"
)
