// Package config provides configuration loading and structs for the market scan service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Vector    VectorConfig    `yaml:"vector"`
	Matching  MatchingConfig  `yaml:"matching"`
	Search    SearchConfig    `yaml:"search"`
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`
	Intake    IntakeConfig    `yaml:"intake"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the market scan store settings.
type StorageConfig struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver           string `yaml:"driver"`
	DatabasePath     string `yaml:"database_path"`
	DatabaseURLEnv   string `yaml:"database_url_env"`
	KeywordIndexPath string `yaml:"keyword_index_path"`
}

// DatabaseURL resolves the postgres connection string from the environment.
func (s *StorageConfig) DatabaseURL() string {
	return os.Getenv(s.DatabaseURLEnv)
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai", "onnx", or "mock".
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Dimensions int    `yaml:"dimensions"`
	// MaxChars is the character ceiling applied to embedding text before the provider call.
	MaxChars  int    `yaml:"max_chars"`
	CacheSize int    `yaml:"cache_size"`
	ModelPath string `yaml:"model_path"`
	MaxTokens int    `yaml:"max_tokens"`
}

// APIKey resolves the provider key from the environment.
func (e *EmbeddingConfig) APIKey() string {
	return os.Getenv(e.APIKeyEnv)
}

// VectorConfig selects the vector index backend.
type VectorConfig struct {
	// IndexType is "memory", "bolt", or "pgvector".
	IndexType string `yaml:"index_type"`
	Path      string `yaml:"path"`
	Table     string `yaml:"table"`
}

// MatchingConfig holds similarity thresholds and per-call timeouts.
type MatchingConfig struct {
	SimilarThreshold  float64       `yaml:"similar_threshold"`
	AnalysisThreshold float64       `yaml:"analysis_threshold"`
	MaxResults        int           `yaml:"max_results"`
	EmbedTimeout      time.Duration `yaml:"embed_timeout"`
	QueryTimeout      time.Duration `yaml:"query_timeout"`
	UpsertTimeout     time.Duration `yaml:"upsert_timeout"`
}

// SearchConfig holds hybrid scan search settings.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
	// Candidates is how many hits each backend contributes before fusion.
	Candidates     int     `yaml:"candidates"`
	KeywordWeight  float64 `yaml:"keyword_weight"`
	SemanticWeight float64 `yaml:"semantic_weight"`
	// SemanticThreshold drops vector hits scoring below it.
	SemanticThreshold float64 `yaml:"semantic_threshold"`
}

// AnalyzerConfig configures the job analysis oracle.
type AnalyzerConfig struct {
	// Provider is "gemini" or "rules".
	Provider  string        `yaml:"provider"`
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout"`
	// Fallback enables the rule-based analysis when the oracle fails.
	Fallback *bool `yaml:"fallback"`
}

// APIKey resolves the analyzer key from the environment.
func (a *AnalyzerConfig) APIKey() string {
	return os.Getenv(a.APIKeyEnv)
}

// FallbackOrDefault reports whether rule-based fallback is enabled; defaults to true when unset.
func (a *AnalyzerConfig) FallbackOrDefault() bool {
	if a.Fallback != nil {
		return *a.Fallback
	}
	return true
}

// IntakeConfig holds drop-folder settings for job posting files.
// The client fields fill in postings that do not name a client.
type IntakeConfig struct {
	Directories   []string `yaml:"directories"`
	Extensions    []string `yaml:"extensions"`
	ClientName    string   `yaml:"client_name"`
	ClientEmail   string   `yaml:"client_email"`
	CompanyDomain string   `yaml:"company_domain"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.KeywordIndexPath = expandPath(cfg.Storage.KeywordIndexPath, configDir)
	cfg.Vector.Path = expandPath(cfg.Vector.Path, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	for i := range cfg.Intake.Directories {
		cfg.Intake.Directories[i] = expandPath(cfg.Intake.Directories[i], configDir)
	}

	return &cfg, nil
}

// LoadEnv loads KEY=value pairs from the given .env files into the process environment.
// Missing files are ignored; variables already set are not overridden.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to stat env file: %w", err)
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
