package dto

import "github.com/google/uuid"

// PublishDocumentIngestedMessage is the bus payload emitted after a document
// commit, consumed by the notification worker.
type PublishDocumentIngestedMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
}
