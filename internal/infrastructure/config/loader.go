// Package config loads YAML configuration and resolves environment overrides
// once at startup, so the rest of the application sees an immutable Config.
package config

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/rai-go/internal/domain"
	"github.com/doeshing/rai-go/internal/ports"
)

// Environment variable candidates, in precedence order. The first non-empty
// value wins; resolution happens exactly once per Load.
var (
	endpointCandidates    = []string{"AZURE_OPENAI_ENDPOINT"}
	deploymentCandidates  = []string{"AZURE_OPENAI_DEPLOYMENT"}
	apiKeyCandidates      = []string{"AZURE_OPENAI_KEY", "AZURE_OPENAI_API_KEY"}
	apiVersionCandidates  = []string{"AZURE_OPENAI_API_VERSION"}
	temperatureCandidates = []string{"AZURE_OPENAI_TEMPERATURE"}
	maxTokensCandidates   = []string{"AZURE_OPENAI_MAX_TOKENS"}
	runLogCandidates      = []string{"RAI_RUN_LOG"}
)

// FileLoader loads YAML configuration from ~/.rai/config.yaml (overridable
// via RAI_CONFIG) and applies environment overrides.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path means resolve the default
// location at load time.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing config file is replaced by
// a freshly written default.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := defaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return applyEnv(hydrateDefaults(cfg)), nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return applyEnv(hydrateDefaults(cfg)), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("RAI_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(userHomeDir(), ".rai", "config.yaml")
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func defaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Azure: domain.AzureSettings{
			APIVersion: "2025-01-01-preview",
		},
		Generation: domain.GenerationSettings{
			SystemPrompt:   "You are an expert software engineer. Return ONLY the requested source text. No markdown fences, no explanations.",
			Temperature:    0.0,
			MaxTokens:      6000,
			TimeoutSeconds: 300,
		},
		Refactor: domain.RefactorSettings{
			SystemPrompt:     "You are an expert software engineer. Return ONLY the FULL updated file contents for the target file. Do not omit any lines. No markdown fences, no explanations.",
			StructuralMarker: "<?php",
		},
		Runs: domain.RunLogSettings{
			Storage: domain.RunStorageJSONL,
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	def := defaultConfig()
	if cfg.Azure.APIVersion == "" {
		cfg.Azure.APIVersion = def.Azure.APIVersion
	}
	if cfg.Generation.SystemPrompt == "" {
		cfg.Generation.SystemPrompt = def.Generation.SystemPrompt
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = def.Generation.MaxTokens
	}
	if cfg.Generation.TimeoutSeconds == 0 {
		cfg.Generation.TimeoutSeconds = def.Generation.TimeoutSeconds
	}
	if cfg.Refactor.SystemPrompt == "" {
		cfg.Refactor.SystemPrompt = def.Refactor.SystemPrompt
	}
	if cfg.Refactor.StructuralMarker == "" {
		cfg.Refactor.StructuralMarker = def.Refactor.StructuralMarker
	}
	if cfg.Runs.Storage == "" {
		cfg.Runs.Storage = domain.RunStorageJSONL
	}
	return cfg
}

// applyEnv resolves the ordered environment candidates into the config.
// Environment values win over file values.
func applyEnv(cfg domain.Config) domain.Config {
	if v := firstEnv(endpointCandidates); v != "" {
		cfg.Azure.Endpoint = v
	}
	if v := firstEnv(deploymentCandidates); v != "" {
		cfg.Azure.Deployment = v
	}
	if v := firstEnv(apiVersionCandidates); v != "" {
		cfg.Azure.APIVersion = v
	}
	if v := firstEnv(temperatureCandidates); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Generation.Temperature = parsed
		}
	}
	if v := firstEnv(maxTokensCandidates); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Generation.MaxTokens = parsed
		}
	}
	if v := firstEnv(runLogCandidates); v != "" {
		cfg.Runs.Path = expandPath(v)
	}
	cfg.Azure.APIKey = firstEnv(apiKeyCandidates)
	cfg.Azure.Endpoint = NormalizeEndpoint(cfg.Azure.Endpoint)
	return cfg
}

func firstEnv(candidates []string) string {
	for _, name := range candidates {
		if value := os.Getenv(name); value != "" {
			return value
		}
	}
	return ""
}

// NormalizeEndpoint reduces a pasted full chat-completions URL to the base
// resource endpoint the API expects: https://<resource>.openai.azure.com/.
// Values that do not look like an Azure OpenAI host pass through unchanged.
func NormalizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}

	if parsed, err := url.Parse(raw); err == nil &&
		parsed.Scheme != "" && parsed.Host != "" &&
		strings.HasSuffix(parsed.Hostname(), ".openai.azure.com") {
		return parsed.Scheme + "://" + parsed.Host + "/"
	}

	// Handle inputs without a scheme (rare).
	if strings.Contains(raw, ".openai.azure.com") && !strings.Contains(raw, "://") {
		host := strings.SplitN(raw, "/", 2)[0]
		return "https://" + host + "/"
	}

	return raw
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
