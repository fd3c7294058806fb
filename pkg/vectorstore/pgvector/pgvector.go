package pgvector

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"school-assistant-be/pkg/vectorstore"
)

// DocumentEmbedding is the persisted form of an embedded chunk.
type DocumentEmbedding struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SourceId  string          `gorm:"type:varchar(255);index"`
	Document  string          `gorm:"type:text"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"` // dimension fixed by migration
	Ordinal   int             `gorm:"index"`            // global ingestion order
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (DocumentEmbedding) TableName() string {
	return "document_embeddings"
}

// Storage is a pgvector-backed vector store. The column dimension comes from
// the schema, so the expected dimension is injected from config rather than
// inferred from the first ingestion.
type Storage struct {
	db        *gorm.DB
	dimension int

	mu      sync.Mutex
	nextOrd int
	primed  bool
}

var _ vectorstore.VectorStore = &Storage{}

func NewStorage(db *gorm.DB, dimension int) (*Storage, error) {
	if err := db.AutoMigrate(&DocumentEmbedding{}); err != nil {
		return nil, fmt.Errorf("migrate document_embeddings: %w", err)
	}
	return &Storage{db: db, dimension: dimension}, nil
}

func (s *Storage) Dimension() int {
	var count int64
	if err := s.db.Model(&DocumentEmbedding{}).Count(&count).Error; err != nil || count == 0 {
		return 0
	}
	return s.dimension
}

func (s *Storage) Add(chunks []vectorstore.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return vectorstore.ErrDimensionMismatch
	}
	if len(chunks) == 0 {
		return nil
	}
	for _, v := range vectors {
		if len(v) != s.dimension {
			return vectorstore.ErrDimensionMismatch
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.primeOrdinal(); err != nil {
		return err
	}

	rows := make([]*DocumentEmbedding, len(chunks))
	for i, c := range chunks {
		rows[i] = &DocumentEmbedding{
			Id:        uuid.New(),
			SourceId:  c.SourceID,
			Document:  c.Text,
			Embedding: pgvector.NewVector(vectors[i]),
			Ordinal:   s.nextOrd + i,
		}
	}

	// Single transaction keeps per-document ingestion atomic.
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	}); err != nil {
		return err
	}

	s.nextOrd += len(chunks)
	return nil
}

func (s *Storage) Search(vector []float32, topK int) ([]vectorstore.SearchResult, error) {
	if len(vector) != s.dimension {
		return nil, vectorstore.ErrDimensionMismatch
	}
	if topK <= 0 {
		topK = 4
	}

	var count int64
	if err := s.db.Model(&DocumentEmbedding{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, vectorstore.ErrStoreEmpty
	}

	var rows []struct {
		DocumentEmbedding
		Distance float64
	}
	if err := s.searchQuery(vector, topK).Find(&rows).Error; err != nil {
		return nil, err
	}

	results := make([]vectorstore.SearchResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, vectorstore.SearchResult{
			Chunk: vectorstore.Chunk{
				SourceID: r.SourceId,
				Text:     r.Document,
				Ordinal:  r.Ordinal,
			},
			// pgvector cosine distance is 1 - similarity
			Score: float32(1 - r.Distance),
		})
	}
	return results, nil
}

// searchQuery builds the ranked retrieval. Cosine distance (embedding <=>
// query) is selected as "distance" so the ORDER BY can reference it; ordinal
// breaks ties so ranking is stable across repeated calls.
func (s *Storage) searchQuery(vector []float32, topK int) *gorm.DB {
	return s.db.
		Model(&DocumentEmbedding{}).
		Select("*, (embedding <=> ?) AS distance", pgvector.NewVector(vector)).
		Order("distance ASC").
		Order("ordinal ASC").
		Limit(topK)
}

func (s *Storage) primeOrdinal() error {
	if s.primed {
		return nil
	}
	var maxOrd *int
	if err := s.db.Model(&DocumentEmbedding{}).Select("MAX(ordinal)").Scan(&maxOrd).Error; err != nil {
		return err
	}
	if maxOrd != nil {
		s.nextOrd = *maxOrd + 1
	}
	s.primed = true
	return nil
}
