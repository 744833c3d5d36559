// Package config builds the process configuration from the environment and
// an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StoreQdrant = "qdrant"
	StoreMemory = "memory"

	// ModeHTTP serves everything over HTTP; ModeStdio additionally runs MCP on stdin/stdout.
	ModeHTTP  = "http"
	ModeStdio = "stdio"
)

// Config holds every setting the commands need.
type Config struct {
	QdrantHost   string `yaml:"qdrant_host"`
	QdrantPort   int    `yaml:"qdrant_port"`
	QdrantAPIKey string `yaml:"qdrant_api_key"`
	QdrantTLS    bool   `yaml:"qdrant_tls"`
	Collection   string `yaml:"collection"`
	VectorStore  string `yaml:"vector_store"`

	LLMAPIKey      string `yaml:"llm_api_key"`
	LLMBaseURL     string `yaml:"llm_base_url"`
	CodeModel      string `yaml:"code_model"`
	QueryModel     string `yaml:"query_model"`
	EmbeddingModel string `yaml:"embedding_model"`

	GitHubToken string `yaml:"github_token"`
	GitBinary   string `yaml:"git_binary"`

	IngestWorkers    int    `yaml:"ingest_workers"`
	SummaryMaxTokens int    `yaml:"summary_max_tokens"`
	MaxFileBytes     int64  `yaml:"max_file_bytes"`
	ScratchDir       string `yaml:"scratch_dir"`
	QueryCacheSize   int    `yaml:"query_cache_size"`

	Port         string `yaml:"port"`
	LogLevel     string `yaml:"log_level"`
	MCPStateless bool   `yaml:"mcp_stateless"`
	ServerMode   string `yaml:"server_mode"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		QdrantHost:       "localhost",
		QdrantPort:       6334,
		Collection:       "document_collection",
		VectorStore:      StoreQdrant,
		LLMBaseURL:       "https://api.mistral.ai/v1",
		CodeModel:        "devstral-small-2505",
		QueryModel:       "mistral-small-latest",
		EmbeddingModel:   "mistral-embed",
		GitBinary:        "git",
		IngestWorkers:    1,
		SummaryMaxTokens: 16000,
		QueryCacheSize:   1024,
		Port:             "8000",
		LogLevel:         "info",
		ServerMode:       ModeHTTP,
	}
}

// Load returns defaults overridden by environment variables, then by the
// YAML file at path when path is non-empty.
func Load(path string) (*Config, error) {
	return load(os.LookupEnv, path)
}

func load(lookup func(string) (string, bool), path string) (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	var errs []error
	flag := func(dst *bool, key string) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	num := func(dst *int, key string) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str(&c.QdrantHost, "QDRANT_HOST")
	num(&c.QdrantPort, "QDRANT_PORT")
	str(&c.QdrantAPIKey, "QDRANT_API_KEY")
	flag(&c.QdrantTLS, "QDRANT_TLS")
	str(&c.Collection, "QDRANT_COLLECTION_NAME")
	str(&c.VectorStore, "VECTOR_STORE")

	str(&c.LLMAPIKey, "LLM_API_KEY", "MISTRAL_API_KEY", "OPENAI_API_KEY")
	str(&c.LLMBaseURL, "LLM_BASE_URL")
	str(&c.CodeModel, "LLM_CODE_MODEL")
	str(&c.QueryModel, "LLM_QUERY_MODEL")
	str(&c.EmbeddingModel, "EMBEDDING_MODEL")

	str(&c.GitHubToken, "GITHUB_TOKEN")
	str(&c.GitBinary, "GIT_BINARY")

	num(&c.IngestWorkers, "INGEST_WORKERS")
	num(&c.SummaryMaxTokens, "SUMMARY_MAX_TOKENS")
	if v, ok := lookup("MAX_FILE_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_FILE_BYTES: %w", err))
		}
		c.MaxFileBytes = n
	}
	str(&c.ScratchDir, "SCRATCH_DIR")
	num(&c.QueryCacheSize, "QUERY_CACHE_SIZE")

	str(&c.Port, "PORT")
	str(&c.LogLevel, "LOG_LEVEL")
	flag(&c.MCPStateless, "MCP_STATELESS")
	str(&c.ServerMode, "SERVER_MODE")

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %w", errors.Join(errs...))
	}
	return nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.VectorStore {
	case StoreQdrant, StoreMemory:
	default:
		return fmt.Errorf("unknown vector store %q (want %s or %s)", c.VectorStore, StoreQdrant, StoreMemory)
	}
	switch c.ServerMode {
	case ModeHTTP, ModeStdio:
	default:
		return fmt.Errorf("unknown server mode %q (want %s or %s)", c.ServerMode, ModeHTTP, ModeStdio)
	}
	if c.Collection == "" {
		return errors.New("collection name must not be empty")
	}
	if c.IngestWorkers < 1 {
		return fmt.Errorf("ingest workers must be at least 1, got %d", c.IngestWorkers)
	}
	if c.MaxFileBytes < 0 {
		return fmt.Errorf("max file bytes must not be negative, got %d", c.MaxFileBytes)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
