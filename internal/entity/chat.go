package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeAI     MessageType = "ai"
	MessageTypeSystem MessageType = "system"
)

// ChatMessage is one encrypted message inside a chat log. Content is always
// ciphertext; plaintext exists only transiently around the encryption
// gateway.
type ChatMessage struct {
	MessageId uuid.UUID              `json:"message_id"`
	SenderId  uuid.UUID              `json:"sender_id"`
	Content   string                 `json:"content"`
	Type      MessageType            `json:"message_type"`
	IsAI      bool                   `json:"is_ai"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ChatLog is the append-only message sequence for one (room, topic). Append
// order is server-acceptance order; the log is never truncated, only
// appended or cleared whole.
type ChatLog struct {
	Id           uuid.UUID
	RoomId       uuid.UUID
	TopicId      uuid.UUID
	Messages     []ChatMessage
	IsActive     bool
	LastActivity time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Recent returns the trailing limit messages in order.
func (l *ChatLog) Recent(limit int) []ChatMessage {
	if limit <= 0 || limit >= len(l.Messages) {
		return l.Messages
	}
	return l.Messages[len(l.Messages)-limit:]
}
