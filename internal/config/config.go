package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the prodask API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	LLM        LLMConfig        `yaml:"llm"`
	Moderation ModerationConfig `yaml:"moderation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Assembler  AssemblerConfig  `yaml:"assembler"`
	Session    SessionConfig    `yaml:"session"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds vector store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	TimeoutSec       int    `yaml:"timeout_sec"`
}

// LLMConfig holds chat completion provider settings for rewriting and generation.
type LLMConfig struct {
	APIKey            string `yaml:"api_key"`
	BaseURL           string `yaml:"base_url"`
	RewriteModel      string `yaml:"rewrite_model"`
	GenerationModel   string `yaml:"generation_model"`
	RewriteTimeoutSec int    `yaml:"rewrite_timeout_sec"`
	GenTimeoutSec     int    `yaml:"generation_timeout_sec"`
}

// ModerationConfig holds safety classifier settings.
type ModerationConfig struct {
	Model      string `yaml:"model"`
	FailOpen   bool   `yaml:"fail_open"` // default false: block when the classifier is unreachable
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RetrievalConfig holds similarity search settings.
type RetrievalConfig struct {
	SpecsTopK   int `yaml:"specs_top_k"`
	ReviewsTopK int `yaml:"reviews_top_k"`
	MaxEvidence int `yaml:"max_evidence"`
	TimeoutSec  int `yaml:"timeout_sec"`
}

// AssemblerConfig holds evidence payload settings.
type AssemblerConfig struct {
	MaxChars int `yaml:"max_chars"`
}

// SessionConfig holds conversation log settings.
type SessionConfig struct {
	TTLHours      int `yaml:"ttl_hours"`
	RewriteWindow int `yaml:"rewrite_window"` // last N turns passed to the rewriter
}

// VocabularyConfig points at the offline filterable-metadata snapshot.
type VocabularyConfig struct {
	SnapshotPath string `yaml:"snapshot_path"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 10
	}
	if c.LLM.RewriteTimeoutSec <= 0 {
		c.LLM.RewriteTimeoutSec = 10
	}
	if c.LLM.GenTimeoutSec <= 0 {
		c.LLM.GenTimeoutSec = 60
	}
	if c.Moderation.TimeoutSec <= 0 {
		c.Moderation.TimeoutSec = 5
	}
	if c.Retrieval.SpecsTopK <= 0 {
		c.Retrieval.SpecsTopK = 5
	}
	if c.Retrieval.ReviewsTopK <= 0 {
		c.Retrieval.ReviewsTopK = 8
	}
	if c.Retrieval.MaxEvidence <= 0 {
		c.Retrieval.MaxEvidence = 8
	}
	if c.Retrieval.TimeoutSec <= 0 {
		c.Retrieval.TimeoutSec = 10
	}
	if c.Assembler.MaxChars <= 0 {
		c.Assembler.MaxChars = 8000
	}
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = 24
	}
	if c.Session.RewriteWindow <= 0 {
		c.Session.RewriteWindow = 3
	}
	if c.Vocabulary.SnapshotPath == "" {
		c.Vocabulary.SnapshotPath = "filterable_metadata.json"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.LLM.RewriteModel == "" {
		return fmt.Errorf("llm.rewrite_model is required")
	}
	if c.LLM.GenerationModel == "" {
		return fmt.Errorf("llm.generation_model is required")
	}
	if c.Retrieval.MaxEvidence > 13 {
		return fmt.Errorf("retrieval.max_evidence must not exceed 13, got %d", c.Retrieval.MaxEvidence)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
