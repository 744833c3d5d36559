package storage

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"
)

type memoryCollection struct {
	dimension uint64
	distance  Distance
	points    []Point
}

// MemoryStore is an in-process VectorStore using brute-force similarity.
// It is used for tests and for running without a Qdrant server.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (m *MemoryStore) Health(context.Context) error { return nil }

func (m *MemoryStore) CollectionExists(_ context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.collections[name]
	return ok, nil
}

func (m *MemoryStore) CreateCollection(_ context.Context, name string, dimension uint64, distance Distance) error {
	if dimension == 0 {
		return fmt.Errorf("create collection %s: invalid dimension 0", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; ok {
		return fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}
	m.collections[name] = &memoryCollection{dimension: dimension, distance: distance}
	return nil
}

func (m *MemoryStore) CollectionInfo(_ context.Context, name string) (*CollectionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return &CollectionInfo{Name: name, Dimension: c.dimension, PointsCount: uint64(len(c.points))}, nil
}

// Upsert replaces points with an existing id and appends the rest.
func (m *MemoryStore) Upsert(_ context.Context, name string, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	for _, p := range points {
		if uint64(len(p.Vector)) != c.dimension {
			return fmt.Errorf("%w: point %s has %d, collection %s expects %d",
				ErrDimensionMismatch, p.ID, len(p.Vector), name, c.dimension)
		}
	}
	for _, p := range points {
		stored := Point{
			ID:       p.ID,
			Vector:   slices.Clone(p.Vector),
			Text:     p.Text,
			Metadata: maps.Clone(p.Metadata),
		}
		if i := slices.IndexFunc(c.points, func(q Point) bool { return q.ID == p.ID }); i >= 0 {
			c.points[i] = stored
			continue
		}
		c.points = append(c.points, stored)
	}
	return nil
}

func (m *MemoryStore) Search(_ context.Context, name string, vector []float32, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if uint64(len(vector)) != c.dimension {
		return nil, fmt.Errorf("%w: query has %d, collection %s expects %d",
			ErrDimensionMismatch, len(vector), name, c.dimension)
	}

	records := make([]Record, 0, len(c.points))
	for _, p := range c.points {
		records = append(records, Record{
			ID:       p.ID,
			Score:    score(c.distance, p.Vector, vector),
			Text:     p.Text,
			Metadata: maps.Clone(p.Metadata),
		})
	}
	slices.SortStableFunc(records, func(a, b Record) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if limit >= 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

func (m *MemoryStore) DeleteCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, name)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// score returns a similarity where larger is closer. Euclid is negated distance.
func score(d Distance, a, b []float32) float64 {
	var dot, na, nb, sq float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
		sq += (x - y) * (x - y)
	}
	switch d {
	case DistanceDot:
		return dot
	case DistanceEuclid:
		return -math.Sqrt(sq)
	default:
		if na == 0 || nb == 0 {
			return 0
		}
		return dot / (math.Sqrt(na) * math.Sqrt(nb))
	}
}
