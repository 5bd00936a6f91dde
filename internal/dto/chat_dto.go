package dto

import (
	"time"

	"github.com/google/uuid"
)

// ChatHistoryMessage is one decrypted message as served over REST and in the
// room_history frame.
type ChatHistoryMessage struct {
	MessageId uuid.UUID              `json:"message_id"`
	SenderId  uuid.UUID              `json:"sender_id"`
	Content   string                 `json:"content"`
	Type      string                 `json:"message_type"`
	IsAI      bool                   `json:"is_ai"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type ChatHistoryResponse struct {
	RoomId   uuid.UUID            `json:"room_id"`
	TopicId  uuid.UUID            `json:"topic_id"`
	Messages []ChatHistoryMessage `json:"messages"`
}

type PresenceTopic struct {
	TopicId uuid.UUID   `json:"topic_id"`
	UserIds []uuid.UUID `json:"user_ids"`
}

type PresenceResponse struct {
	RoomId uuid.UUID       `json:"room_id"`
	Topics []PresenceTopic `json:"topics"`
}
