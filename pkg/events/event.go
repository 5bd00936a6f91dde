package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "DOCUMENT_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used by publishers and the audit
// subscriber.
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

// Event types emitted by the chat and ingestion domains.
const (
	TypeDocumentIngested   = "DOCUMENT_INGESTED"
	TypeDocumentIngestFail = "DOCUMENT_INGEST_FAILED"
	TypeAIResponse         = "AI_RESPONSE_GENERATED"
	TypeChatLogCleared     = "CHAT_LOG_CLEARED"
)

func NewDocumentIngested(documentID, ownerID string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"document_id": documentID,
			"owner_id":    ownerID,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentIngestFailed(documentID, ownerID, reason string) Event {
	return BaseEvent{
		Type: TypeDocumentIngestFail,
		Data: map[string]interface{}{
			"document_id": documentID,
			"owner_id":    ownerID,
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewAIResponse(roomID, topicID, userID string, tokensUsed int, processingMillis int64) Event {
	return BaseEvent{
		Type: TypeAIResponse,
		Data: map[string]interface{}{
			"room_id":           roomID,
			"topic_id":          topicID,
			"user_id":           userID,
			"tokens_used":       tokensUsed,
			"processing_millis": processingMillis,
		},
		OccurredAt: time.Now(),
	}
}

func NewChatLogCleared(roomID, topicID string) Event {
	return BaseEvent{
		Type: TypeChatLogCleared,
		Data: map[string]interface{}{
			"room_id":  roomID,
			"topic_id": topicID,
		},
		OccurredAt: time.Now(),
	}
}
