package events

import "time"

// Event is the contract for everything that crosses the event bus.
type Event interface {
	// EventType returns the unique code for this event (e.g. "DOCUMENT_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used everywhere in this codebase.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes.
const (
	TypeDocumentIngested = "DOCUMENT_INGESTED"
	TypeStudentLoggedIn  = "STUDENT_LOGGED_IN"
)

// NewDocumentIngested builds the event emitted after a document commit.
func NewDocumentIngested(documentID, filename string, chunkCount int) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"document_id": documentID,
			"filename":    filename,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewStudentLoggedIn builds the event emitted after a successful portal login.
func NewStudentLoggedIn(sessionID, sid, name string) BaseEvent {
	return BaseEvent{
		Type: TypeStudentLoggedIn,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"sid":        sid,
			"name":       name,
		},
		OccurredAt: time.Now(),
	}
}
