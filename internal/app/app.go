// Package app wires configuration into a ready service.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bull/repo-rag/internal/config"
	"github.com/bull/repo-rag/internal/document"
	"github.com/bull/repo-rag/internal/embedding"
	ghclient "github.com/bull/repo-rag/internal/github"
	"github.com/bull/repo-rag/internal/indexer"
	"github.com/bull/repo-rag/internal/llm"
	"github.com/bull/repo-rag/internal/rag"
	"github.com/bull/repo-rag/internal/service"
	"github.com/bull/repo-rag/internal/source"
	"github.com/bull/repo-rag/internal/storage"
	"github.com/bull/repo-rag/internal/summarizer"
)

// App holds the assembled components.
type App struct {
	Config  *config.Config
	Store   storage.VectorStore
	Service *service.Service
}

// Close releases the vector store connection.
func (a *App) Close() error {
	return a.Store.Close()
}

// NewLogger returns a text logger on stderr at the configured level.
func NewLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// New connects to the vector store and builds every component.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	embeddingClient, err := embedding.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, cfg.EmbeddingModel)
	codeLLM := llm.NewChat(embeddingClient.Client(), cfg.CodeModel)
	queryLLM := llm.NewChat(embeddingClient.Client(), cfg.QueryModel)

	gh, err := ghclient.NewClient(cfg.GitHubToken)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	fetcher := source.NewFetcher(cfg.GitBinary, ghclient.NewResolver(gh), logger)

	sink := indexer.NewSink(store, embedder, cfg.Collection, logger)
	pipeline := indexer.NewPipeline(fetcher,
		summarizer.New(codeLLM, queryLLM, cfg.SummaryMaxTokens, logger),
		sink,
		indexer.Config{
			Workers:      cfg.IngestWorkers,
			MaxFileBytes: cfg.MaxFileBytes,
			ScratchRoot:  cfg.ScratchDir,
		},
		logger,
	)

	querier, err := rag.NewQuerier(sink, embedder, queryLLM, cfg.QueryCacheSize, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create querier: %w", err)
	}

	svc := service.New(service.Deps{
		Ingester:   pipeline,
		Querier:    querier,
		Documents:  document.NewStore(sink, document.DefaultSplitter(), logger),
		Collection: sink,
	}, logger)

	return &App{Config: cfg, Store: store, Service: svc}, nil
}

func openStore(cfg *config.Config) (storage.VectorStore, error) {
	if cfg.VectorStore == config.StoreMemory {
		return storage.NewMemoryStore(), nil
	}
	store, err := storage.NewQdrantStorage(storage.QdrantConfig{
		Host:   cfg.QdrantHost,
		Port:   cfg.QdrantPort,
		APIKey: cfg.QdrantAPIKey,
		UseTLS: cfg.QdrantTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", cfg.QdrantHost, cfg.QdrantPort, err)
	}
	return store, nil
}
