package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestDocumentResponse struct {
	Id         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
}

type SearchDocumentsRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k" validate:"omitempty,min=1,max=20"`
}

type SearchDocumentsResponseItem struct {
	SourceID string  `json:"source_id"`
	Text     string  `json:"text"`
	Ordinal  int     `json:"ordinal"`
	Score    float32 `json:"score"`
}

type SearchDocumentsResponse struct {
	Results []SearchDocumentsResponseItem `json:"results"`
}

type ListDocumentsResponseItem struct {
	Id         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}
