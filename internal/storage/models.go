package storage

// Payload keys. Every point stores its text under PayloadTextKey and its
// metadata object under PayloadMetadataKey; readers must use the same names.
const (
	PayloadTextKey     = "text"
	PayloadMetadataKey = "metadata"
)

// Metadata keys written by the ingestion pipeline.
const (
	MetaRepoName         = "repo_name"
	MetaFilePath         = "file_path"
	MetaOriginalFilePath = "original_file_path"
	MetaIsSummary        = "is_summary"
	MetaLanguage         = "language"
	MetaSource           = "source"
	MetaChunkIndex       = "chunk_index"
	MetaHeaderPath       = "header_path"
)

// DefaultCollectionName is the collection used when none is configured.
const DefaultCollectionName = "document_collection"

// Distance is a vector similarity measure.
type Distance string

const (
	DistanceCosine Distance = "Cosine"
	DistanceDot    Distance = "Dot"
	DistanceEuclid Distance = "Euclid"
)

// Metadata is the structured metadata object attached to a point.
// Values are strings, booleans, numbers, or nested maps/slices of those.
type Metadata map[string]any

// Point is the unit of persistence.
type Point struct {
	ID       string // UUID
	Vector   []float32
	Text     string
	Metadata Metadata
}

// Record is a stored point returned by similarity search.
type Record struct {
	ID       string
	Score    float64
	Text     string
	Metadata Metadata
}

// CollectionInfo describes a collection.
type CollectionInfo struct {
	Name        string
	Dimension   uint64
	PointsCount uint64
}
