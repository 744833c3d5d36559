// Package storage persists embedded points in a vector index.
package storage

import "context"

// VectorStore is the vector index capability consumed by the pipeline.
type VectorStore interface {
	// Health returns nil when the backend is reachable.
	Health(ctx context.Context) error

	CollectionExists(ctx context.Context, name string) (bool, error)

	// CreateCollection creates name with a fixed vector dimension.
	CreateCollection(ctx context.Context, name string, dimension uint64, distance Distance) error

	// CollectionInfo returns ErrCollectionNotFound for a missing collection.
	CollectionInfo(ctx context.Context, name string) (*CollectionInfo, error)

	// Upsert blocks until the points are visible to subsequent searches.
	Upsert(ctx context.Context, name string, points []Point) error

	// Search returns up to limit records ordered by descending similarity.
	Search(ctx context.Context, name string, vector []float32, limit int) ([]Record, error)

	DeleteCollection(ctx context.Context, name string) error

	Close() error
}
