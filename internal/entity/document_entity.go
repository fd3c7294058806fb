package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Filename   string
	ChunkCount int
	CreatedAt  time.Time
}
