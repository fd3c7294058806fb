package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"school-assistant-be/internal/dto"
	"school-assistant-be/internal/entity"
	"school-assistant-be/internal/pkg/logger"
	"school-assistant-be/internal/repository/contract"
	"school-assistant-be/pkg/embedding"
	"school-assistant-be/pkg/extract"
	"school-assistant-be/pkg/utils"
	"school-assistant-be/pkg/vectorstore"

	"github.com/google/uuid"
)

// ErrEmptyDocument means extraction produced no usable text. Nothing was
// stored; the vector index is unchanged.
var ErrEmptyDocument = errors.New("document contains no extractable text")

type IDocumentService interface {
	Ingest(ctx context.Context, filename string, data []byte) (*dto.IngestDocumentResponse, error)
	Search(ctx context.Context, query string, topK int) (*dto.SearchDocumentsResponse, error)
	List(ctx context.Context) ([]*dto.ListDocumentsResponseItem, error)
}

type documentService struct {
	store             vectorstore.VectorStore
	embeddingProvider embedding.EmbeddingProvider
	documentRepo      contract.DocumentRepository
	publisherService  IPublisherService
	chunkSize         int
	chunkOverlap      int
	defaultTopK       int
	log               logger.ILogger
}

func NewDocumentService(
	store vectorstore.VectorStore,
	embeddingProvider embedding.EmbeddingProvider,
	documentRepo contract.DocumentRepository,
	publisherService IPublisherService,
	chunkSize int,
	chunkOverlap int,
	defaultTopK int,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		store:             store,
		embeddingProvider: embeddingProvider,
		documentRepo:      documentRepo,
		publisherService:  publisherService,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
		defaultTopK:       defaultTopK,
		log:               log,
	}
}

// Ingest extracts, chunks and embeds one document, then commits every chunk
// in a single store operation. Any embedding failure aborts the whole
// ingestion with nothing written, so the index never holds a partial
// document.
func (ds *documentService) Ingest(ctx context.Context, filename string, data []byte) (*dto.IngestDocumentResponse, error) {
	text, err := extract.Text(filename, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	documentId := uuid.New()
	pieces := utils.SplitText(text, ds.chunkSize, ds.chunkOverlap)

	chunks := make([]vectorstore.Chunk, 0, len(pieces))
	vectors := make([][]float32, 0, len(pieces))
	for i, piece := range pieces {
		res, err := ds.embeddingProvider.Generate(piece, embedding.TaskRetrievalDocument)
		if err != nil {
			ds.log.Error("document", "embedding failed, ingestion aborted", map[string]interface{}{
				"filename": filename, "chunk": i, "error": err.Error(),
			})
			return nil, fmt.Errorf("embed chunk %d of '%s': %w", i, filename, err)
		}
		chunks = append(chunks, vectorstore.Chunk{
			SourceID: documentId.String(),
			Text:     piece,
			Ordinal:  i,
		})
		vectors = append(vectors, res.Embedding.Values)
	}

	if err := ds.store.Add(chunks, vectors); err != nil {
		return nil, fmt.Errorf("store document '%s': %w", filename, err)
	}

	document := &entity.Document{
		Id:         documentId,
		Filename:   filename,
		ChunkCount: len(chunks),
	}
	if err := ds.documentRepo.Create(ctx, document); err != nil {
		return nil, err
	}

	ds.publishIngested(ctx, document)

	ds.log.Info("document", "document ingested", map[string]interface{}{
		"document_id": documentId.String(), "filename": filename, "chunks": len(chunks),
	})

	return &dto.IngestDocumentResponse{
		Id:         documentId,
		Filename:   filename,
		ChunkCount: len(chunks),
	}, nil
}

// Search embeds the query and returns the closest chunks. A completely empty
// index surfaces vectorstore.ErrStoreEmpty; a populated index with no match
// returns an empty result list.
func (ds *documentService) Search(ctx context.Context, query string, topK int) (*dto.SearchDocumentsResponse, error) {
	if topK <= 0 {
		topK = ds.defaultTopK
	}

	res, err := ds.embeddingProvider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := ds.store.Search(res.Embedding.Values, topK)
	if err != nil {
		return nil, err
	}

	response := &dto.SearchDocumentsResponse{
		Results: make([]dto.SearchDocumentsResponseItem, 0, len(matches)),
	}
	for _, m := range matches {
		response.Results = append(response.Results, dto.SearchDocumentsResponseItem{
			SourceID: m.Chunk.SourceID,
			Text:     m.Chunk.Text,
			Ordinal:  m.Chunk.Ordinal,
			Score:    m.Score,
		})
	}
	return response, nil
}

func (ds *documentService) List(ctx context.Context) ([]*dto.ListDocumentsResponseItem, error) {
	documents, err := ds.documentRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ListDocumentsResponseItem, 0, len(documents))
	for _, doc := range documents {
		items = append(items, &dto.ListDocumentsResponseItem{
			Id:         doc.Id,
			Filename:   doc.Filename,
			ChunkCount: doc.ChunkCount,
			CreatedAt:  doc.CreatedAt,
		})
	}
	return items, nil
}

// publishIngested is best-effort: a failed notification never rolls back a
// committed document.
func (ds *documentService) publishIngested(ctx context.Context, document *entity.Document) {
	if ds.publisherService == nil {
		return
	}

	payload := dto.PublishDocumentIngestedMessage{
		DocumentId: document.Id,
		Filename:   document.Filename,
		ChunkCount: document.ChunkCount,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		ds.log.Warn("document", "failed to marshal ingestion event", map[string]interface{}{
			"document_id": document.Id.String(), "error": err.Error(),
		})
		return
	}
	if err := ds.publisherService.Publish(ctx, encoded); err != nil {
		ds.log.Warn("document", "failed to publish ingestion event", map[string]interface{}{
			"document_id": document.Id.String(), "error": err.Error(),
		})
	}
}
