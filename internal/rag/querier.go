// Package rag answers questions from the indexed content.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bull/repo-rag/internal/indexer"
	"github.com/bull/repo-rag/internal/metrics"
	"github.com/bull/repo-rag/internal/storage"
)

const (
	// DefaultK is the number of excerpts retrieved when none is requested.
	DefaultK = 100

	// DefaultCacheSize bounds the number of cached question embeddings.
	DefaultCacheSize = 1024
)

// Embedder produces the query vector.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Completer generates the answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Answer is the outcome of one question.
type Answer struct {
	Question string
	Answer   string
	// RawResults are the retrieved texts in descending similarity.
	RawResults []string
	Sources    []storage.Record
}

// Querier retrieves excerpts for a question and asks the model to answer.
type Querier struct {
	sink     *indexer.Sink
	embedder Embedder
	llm      Completer
	cache    *lru.Cache[string, []float32]
	logger   *slog.Logger
}

// NewQuerier creates a Querier searching the sink's collection.
func NewQuerier(sink *indexer.Sink, embedder Embedder, llm Completer, cacheSize int, logger *slog.Logger) (*Querier, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, []float32](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Querier{
		sink:     sink,
		embedder: embedder,
		llm:      llm,
		cache:    cache,
		logger:   logger,
	}, nil
}

// Query answers question from the k most similar points. A non-positive k
// selects DefaultK. A missing collection is created empty, so the model is
// still asked, with no excerpts.
func (q *Querier) Query(ctx context.Context, question string, k int) (*Answer, error) {
	start := time.Now()
	if k <= 0 {
		k = DefaultK
	}

	if _, err := q.sink.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}

	vector, err := q.embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	records, err := q.sink.VectorStore().Search(ctx, q.sink.Collection(), vector, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	excerpts := make([]string, len(records))
	for i, r := range records {
		excerpts[i] = r.Text
	}
	q.logger.Debug("Retrieved excerpts", "k", k, "found", len(records))

	reply, err := q.llm.Complete(ctx, BuildPrompt(question, excerpts))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	metrics.QueryAnswered()
	metrics.ObserveQuery(time.Since(start))

	return &Answer{
		Question:   question,
		Answer:     strings.TrimSpace(reply),
		RawResults: excerpts,
		Sources:    records,
	}, nil
}

func (q *Querier) embed(ctx context.Context, question string) ([]float32, error) {
	if v, ok := q.cache.Get(question); ok {
		metrics.QueryCacheHit()
		return v, nil
	}
	v, err := q.embedder.EmbedOne(ctx, question)
	if err != nil {
		return nil, err
	}
	q.cache.Add(question, v)
	return v, nil
}
