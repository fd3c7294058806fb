package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"school-assistant-be/internal/entity"
	"school-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentRepository keeps document records for the lifetime of the process.
// Unlike chat history these never expire; they mirror what the vector index
// holds, and that index is also process-lifetime in memory mode.
type DocumentRepository struct {
	mu        sync.RWMutex
	documents map[uuid.UUID]*entity.Document
}

func NewDocumentRepository() contract.DocumentRepository {
	return &DocumentRepository{documents: make(map[uuid.UUID]*entity.Document)}
}

func (r *DocumentRepository) Create(_ context.Context, document *entity.Document) error {
	if document.Id == uuid.Nil {
		document.Id = uuid.New()
	}
	if document.CreatedAt.IsZero() {
		document.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents[document.Id] = document
	return nil
}

func (r *DocumentRepository) FindById(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if doc, ok := r.documents[id]; ok {
		return doc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *DocumentRepository) FindAll(_ context.Context) ([]*entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Document, 0, len(r.documents))
	for _, doc := range r.documents {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
