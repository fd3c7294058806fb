package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMessage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role          string
	Content       string
	Results       datatypes.JSON `gorm:"type:jsonb"` // operation results rendered with this message
	ChatSessionId uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt     time.Time
}
