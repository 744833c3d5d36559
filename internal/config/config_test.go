package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(env(nil), "")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "document_collection", cfg.Collection)
	assert.Equal(t, 6334, cfg.QdrantPort)
	assert.Equal(t, "devstral-small-2505", cfg.CodeModel)
	assert.Equal(t, "mistral-small-latest", cfg.QueryModel)
	assert.Equal(t, "mistral-embed", cfg.EmbeddingModel)
	assert.Equal(t, 1, cfg.IngestWorkers)
	assert.Equal(t, ModeHTTP, cfg.ServerMode)
}

func TestLoad_Environment(t *testing.T) {
	cfg, err := load(env(map[string]string{
		"QDRANT_HOST":            "qdrant.internal",
		"QDRANT_PORT":            "7000",
		"QDRANT_TLS":             "true",
		"QDRANT_COLLECTION_NAME": "code",
		"MISTRAL_API_KEY":        "mk",
		"OPENAI_API_KEY":         "ok",
		"INGEST_WORKERS":         "4",
		"MAX_FILE_BYTES":         "1048576",
		"VECTOR_STORE":           "memory",
		"MCP_STATELESS":          "1",
		"SERVER_MODE":            "stdio",
	}), "")
	require.NoError(t, err)

	assert.Equal(t, "qdrant.internal", cfg.QdrantHost)
	assert.Equal(t, 7000, cfg.QdrantPort)
	assert.True(t, cfg.QdrantTLS)
	assert.Equal(t, "code", cfg.Collection)
	assert.Equal(t, "mk", cfg.LLMAPIKey, "MISTRAL_API_KEY takes precedence over OPENAI_API_KEY")
	assert.Equal(t, 4, cfg.IngestWorkers)
	assert.Equal(t, int64(1048576), cfg.MaxFileBytes)
	assert.Equal(t, StoreMemory, cfg.VectorStore)
	assert.True(t, cfg.MCPStateless)
	assert.Equal(t, ModeStdio, cfg.ServerMode)
}

func TestLoad_UnknownServerMode(t *testing.T) {
	_, err := load(env(map[string]string{"SERVER_MODE": "grpc"}), "")

	assert.ErrorContains(t, err, "server mode")
}

func TestLoad_InvalidBool(t *testing.T) {
	_, err := load(env(map[string]string{"QDRANT_TLS": "maybe"}), "")

	assert.ErrorContains(t, err, "QDRANT_TLS")
}

func TestLoad_InvalidNumber(t *testing.T) {
	_, err := load(env(map[string]string{"QDRANT_PORT": "six"}), "")

	assert.ErrorContains(t, err, "QDRANT_PORT")
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("collection: from_yaml\ningest_workers: 3\n"), 0o644))

	cfg, err := load(env(map[string]string{"QDRANT_COLLECTION_NAME": "from_env", "QDRANT_HOST": "envhost"}), path)
	require.NoError(t, err)

	assert.Equal(t, "from_yaml", cfg.Collection)
	assert.Equal(t, 3, cfg.IngestWorkers)
	assert.Equal(t, "envhost", cfg.QdrantHost, "keys absent from the file keep their environment value")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := load(env(nil), filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"unknown store": func(c *Config) { c.VectorStore = "redis" },
		"no collection": func(c *Config) { c.Collection = "" },
		"zero workers":  func(c *Config) { c.IngestWorkers = 0 },
		"negative cap":  func(c *Config) { c.MaxFileBytes = -1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := Default()
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	cfg.LogLevel = "DEBUG"
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}
