package websocket

import (
	"encoding/json"
	"time"

	"ai-studyroom-be/internal/dto"

	"github.com/google/uuid"
)

// FrameType is the discriminator of every frame on the wire. The set is
// closed: dispatch tables enumerate all inbound types and reject anything
// else with an error frame.
type FrameType string

const (
	// Inbound
	FrameChat        FrameType = "chat"
	FrameAIRequest   FrameType = "ai_request"
	FrameJoinRoom    FrameType = "join_room"
	FrameLeaveRoom   FrameType = "leave_room"
	FrameTyping      FrameType = "typing"
	FrameReadReceipt FrameType = "read_receipt"
	FramePing        FrameType = "ping"

	// Outbound
	FrameChatMessage FrameType = "chat_message"
	FrameAIResponse  FrameType = "ai_response"
	FrameUserJoined  FrameType = "user_joined"
	FrameUserLeft    FrameType = "user_left"
	FramePong        FrameType = "pong"
	FrameError       FrameType = "error"
	FrameRoomHistory FrameType = "room_history"
)

// InboundFrame is the decoded shape of any client frame. Fields beyond Type
// are populated per frame type.
type InboundFrame struct {
	Type      FrameType `json:"type"`
	Content   string    `json:"content,omitempty"`
	IsTyping  bool      `json:"is_typing,omitempty"`
	MessageId string    `json:"message_id,omitempty"`
}

// ResponseMetadata rides on AI-authored chat_message frames.
type ResponseMetadata struct {
	TokensUsed       int   `json:"tokens_used"`
	ProcessingMillis int64 `json:"processing_time"`
}

type ChatMessageFrame struct {
	Type      FrameType         `json:"type"`
	MessageId uuid.UUID         `json:"message_id"`
	UserId    uuid.UUID         `json:"user_id,omitempty"`
	Content   string            `json:"content"`
	IsAI      bool              `json:"is_ai"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  *ResponseMetadata `json:"metadata,omitempty"`
}

type PresenceFrame struct {
	Type      FrameType `json:"type"`
	UserId    uuid.UUID `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

type TypingFrame struct {
	Type     FrameType `json:"type"`
	UserId   uuid.UUID `json:"user_id"`
	IsTyping bool      `json:"is_typing"`
}

type ReadReceiptFrame struct {
	Type      FrameType `json:"type"`
	UserId    uuid.UUID `json:"user_id"`
	MessageId string    `json:"message_id,omitempty"`
}

type PongFrame struct {
	Type      FrameType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorFrame struct {
	Type      FrameType `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type RoomHistoryFrame struct {
	Type     FrameType                `json:"type"`
	Messages []dto.ChatHistoryMessage `json:"messages"`
}

func newChatMessageFrame(messageId, userId uuid.UUID, content string, ts time.Time) ChatMessageFrame {
	return ChatMessageFrame{
		Type:      FrameChatMessage,
		MessageId: messageId,
		UserId:    userId,
		Content:   content,
		IsAI:      false,
		Timestamp: ts,
	}
}

func newAIResponseFrame(messageId uuid.UUID, content string, ts time.Time, meta ResponseMetadata) ChatMessageFrame {
	return ChatMessageFrame{
		Type:      FrameAIResponse,
		MessageId: messageId,
		Content:   content,
		IsAI:      true,
		Timestamp: ts,
		Metadata:  &meta,
	}
}

func newPresenceFrame(frameType FrameType, userId uuid.UUID) PresenceFrame {
	return PresenceFrame{
		Type:      frameType,
		UserId:    userId,
		Timestamp: time.Now().UTC(),
	}
}

func newErrorFrame(message string) ErrorFrame {
	return ErrorFrame{
		Type:      FrameError,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// mustMarshal serializes outbound frames. All frame structs marshal without
// error by construction.
func mustMarshal(frame interface{}) []byte {
	data, _ := json.Marshal(frame)
	return data
}
