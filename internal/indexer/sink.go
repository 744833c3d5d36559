package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/bull/repo-rag/internal/metrics"
	"github.com/bull/repo-rag/internal/storage"
)

const (
	// DefaultDimension is used when the embedding probe fails at collection creation.
	DefaultDimension = 512

	probeText = "test"
)

// Embedder produces one vector per text.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Sink embeds texts and persists them as points in one collection.
// The collection is created on first use and its dimension cached.
type Sink struct {
	store      storage.VectorStore
	embedder   Embedder
	collection string
	logger     *slog.Logger

	mu        sync.Mutex
	dimension uint64
}

// NewSink creates a Sink writing to collection. An empty collection selects
// storage.DefaultCollectionName.
func NewSink(store storage.VectorStore, embedder Embedder, collection string, logger *slog.Logger) *Sink {
	if collection == "" {
		collection = storage.DefaultCollectionName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		store:      store,
		embedder:   embedder,
		collection: collection,
		logger:     logger,
	}
}

// Collection returns the target collection name.
func (s *Sink) Collection() string { return s.collection }

// VectorStore returns the underlying vector store.
func (s *Sink) VectorStore() storage.VectorStore { return s.store }

// EnsureCollection returns the dimension of the collection, creating it if
// missing. The dimension of a new collection is probed from the embedder.
func (s *Sink) EnsureCollection(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension > 0 {
		return s.dimension, nil
	}

	exists, err := s.store.CollectionExists(ctx, s.collection)
	if err != nil {
		return 0, err
	}

	if exists {
		info, err := s.store.CollectionInfo(ctx, s.collection)
		if err != nil {
			return 0, err
		}
		s.dimension = info.Dimension
		return s.dimension, nil
	}

	dim := uint64(DefaultDimension)
	probe, err := s.embedder.EmbedOne(ctx, probeText)
	if err != nil || len(probe) == 0 {
		s.logger.Warn("Embedding probe failed, using default dimension", "dimension", dim, "error", err)
	} else {
		dim = uint64(len(probe))
	}

	if err := s.store.CreateCollection(ctx, s.collection, dim, storage.DistanceCosine); err != nil {
		return 0, err
	}
	s.logger.Info("Created collection", "collection", s.collection, "dimension", dim)

	s.dimension = dim
	return dim, nil
}

// Drop deletes the collection and forgets its cached dimension.
func (s *Sink) Drop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteCollection(ctx, s.collection); err != nil {
		return err
	}
	s.dimension = 0
	return nil
}

// Store embeds each text and upserts the results, waiting for them to be
// searchable. It returns how many points were stored; every failure is
// logged and reported through the count, never as an error.
func (s *Sink) Store(ctx context.Context, texts []string, metadatas []storage.Metadata) int {
	if len(texts) == 0 {
		return 0
	}

	dim, err := s.EnsureCollection(ctx)
	if err != nil {
		s.logger.Error("Failed to ensure collection", "collection", s.collection, "error", err)
		return 0
	}

	if len(metadatas) != len(texts) {
		s.logger.Warn("Texts and metadatas are misaligned", "texts", len(texts), "metadatas", len(metadatas))
	}

	points := make([]storage.Point, 0, len(texts))
	for i, text := range texts {
		meta := storage.Metadata{}
		if i < len(metadatas) && metadatas[i] != nil {
			meta = metadatas[i]
		}

		vector, err := s.embedder.EmbedOne(ctx, text)
		if err != nil {
			s.logger.Warn("Failed to embed text, excluding it", "index", i, "error", err)
			metrics.EmbedFailed()
			continue
		}
		if uint64(len(vector)) != dim {
			err := fmt.Errorf("%w: got %d, collection %s expects %d", storage.ErrDimensionMismatch, len(vector), s.collection, dim)
			s.logger.Warn("Excluding text", "index", i, "error", err)
			metrics.EmbedFailed()
			continue
		}

		points = append(points, storage.Point{
			ID:       uuid.NewString(),
			Vector:   vector,
			Text:     text,
			Metadata: meta,
		})
	}

	if len(points) == 0 {
		return 0
	}

	if err := s.store.Upsert(ctx, s.collection, points); err != nil {
		s.logger.Error("Failed to upsert points", "collection", s.collection, "count", len(points), "error", err)
		return 0
	}

	metrics.PointsStored(len(points))
	return len(points)
}
