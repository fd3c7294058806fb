package model

import "time"

// Notification is the payload pushed to connected chat clients over the
// websocket channel (ingestion completed, login recorded).
type Notification struct {
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
