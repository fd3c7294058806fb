package memory

import (
	"sort"
	"sync"

	"school-assistant-be/pkg/vectorstore"
)

// Storage is an in-memory vector store using brute-force cosine similarity.
// It is the process-wide shared index: one instance is created at startup and
// grows monotonically until shutdown.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	chunks    []vectorstore.Chunk
}

var _ vectorstore.VectorStore = &Storage{}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

func (s *Storage) Add(chunks []vectorstore.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return vectorstore.ErrDimensionMismatch
	}
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First ingestion fixes the dimension for the store's lifetime.
	dim := s.dimension
	if dim == 0 {
		dim = len(vectors[0])
	}

	// Validate everything before committing anything.
	for _, v := range vectors {
		if len(v) != dim || dim == 0 {
			return vectorstore.ErrDimensionMismatch
		}
	}

	for i := range chunks {
		chunks[i].Ordinal = len(s.chunks) + i
	}
	s.dimension = dim
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *Storage) Search(vector []float32, topK int) ([]vectorstore.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dimension == 0 {
		return nil, vectorstore.ErrStoreEmpty
	}
	if len(vector) != s.dimension {
		return nil, vectorstore.ErrDimensionMismatch
	}
	if topK <= 0 {
		topK = 4
	}

	// Vectors are L2-normalized by the embedding providers, so cosine
	// similarity reduces to a dot product.
	scores := make([]float32, len(s.vectors))
	for i := range s.vectors {
		scores[i] = dot(s.vectors[i], vector)
	}

	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	// Stable sort keeps ingestion order for equal scores, making ranking
	// deterministic across repeated calls.
	sort.SliceStable(idxs, func(a, b int) bool {
		return scores[idxs[a]] > scores[idxs[b]]
	})

	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]vectorstore.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		results = append(results, vectorstore.SearchResult{Chunk: s.chunks[j], Score: scores[j]})
	}
	return results, nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
