package vectorstore

import "errors"

// Chunk is one embedded slice of an ingested document.
type Chunk struct {
	SourceID string
	Text     string
	Ordinal  int // global ingestion order, fixed at insert time
}

// SearchResult pairs a chunk with its cosine similarity to the query vector.
type SearchResult struct {
	Chunk Chunk
	Score float32
}

var (
	// ErrStoreEmpty means no document has ever been ingested, so the vector
	// dimensionality is not yet known. Distinct from a search returning zero
	// results on an initialized store.
	ErrStoreEmpty = errors.New("vector store has not been initialized")

	// ErrDimensionMismatch means a vector's length differs from the dimension
	// fixed at first ingestion.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// VectorStore persists embedded chunks and supports nearest-neighbor search.
// The dimension is fixed by the first Add and never changes; chunks are
// append-only for the lifetime of the store.
type VectorStore interface {
	// Dimension returns the fixed vector length, or 0 before first ingestion.
	Dimension() int

	// Add appends chunks with their vectors. All vectors must share one
	// length; the first successful Add fixes the store's dimension. Add is
	// all-or-nothing: on any validation failure no chunk is committed.
	Add(chunks []Chunk, vectors [][]float32) error

	// Search returns up to topK chunks ranked by similarity (best first),
	// ties broken by ingestion order (earlier first). Returns ErrStoreEmpty
	// before the first successful Add.
	Search(vector []float32, topK int) ([]SearchResult, error)
}
