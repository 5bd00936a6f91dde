package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ai-studyroom-be/internal/dto"
	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/pkg/logger"
	"ai-studyroom-be/pkg/events"
	pktNats "ai-studyroom-be/pkg/nats"
	"ai-studyroom-be/pkg/rag"

	"github.com/google/uuid"
)

// ChatStore persists and reads the encrypted topic log.
type ChatStore interface {
	Append(ctx context.Context, roomId, topicId uuid.UUID, msg entity.ChatMessage) error
	RecentDecrypted(ctx context.Context, roomId, topicId uuid.UUID, limit int) ([]dto.ChatHistoryMessage, error)
}

// Answerer produces a document-grounded reply.
type Answerer interface {
	Answer(ctx context.Context, documentID, ownerID uuid.UUID, question string) (*rag.Answer, error)
}

// KeyProvider resolves a topic's key material.
type KeyProvider interface {
	KeyMaterial(ctx context.Context, topicId uuid.UUID) (string, error)
}

// Cipher seals plaintext under a topic key.
type Cipher interface {
	Encrypt(topicKey, topicID, plaintext string) (string, error)
}

// DocumentResolver finds the document pinned to a topic, if any.
type DocumentResolver interface {
	Document(ctx context.Context, topicId uuid.UUID) (*uuid.UUID, error)
}

type frameHandler func(ctx context.Context, c *Client, frame InboundFrame) bool

// Mediator runs the per-connection protocol: it classifies inbound frames
// and routes them to persistence, the hub, or the answerer. One handler
// failure answers an error frame; it never terminates the read loop.
type Mediator struct {
	hub            *Hub
	chat           ChatStore
	answerer       Answerer
	keys           KeyProvider
	cipher         Cipher
	docs           DocumentResolver
	eventPublisher *pktNats.Publisher
	triggerPrefix  string
	historyLimit   int
	logger         logger.ILogger

	handlers map[FrameType]frameHandler
}

func NewMediator(
	hub *Hub,
	chat ChatStore,
	answerer Answerer,
	keys KeyProvider,
	cipher Cipher,
	docs DocumentResolver,
	eventPublisher *pktNats.Publisher,
	triggerPrefix string,
	historyLimit int,
	log logger.ILogger,
) *Mediator {
	m := &Mediator{
		hub:            hub,
		chat:           chat,
		answerer:       answerer,
		keys:           keys,
		cipher:         cipher,
		docs:           docs,
		eventPublisher: eventPublisher,
		triggerPrefix:  triggerPrefix,
		historyLimit:   historyLimit,
		logger:         log,
	}
	// Closed dispatch table: every inbound type is enumerated here; anything
	// else is answered with an error frame.
	m.handlers = map[FrameType]frameHandler{
		FrameChat:        m.handleChat,
		FrameAIRequest:   m.handleAIRequest,
		FrameJoinRoom:    m.handleJoinRoom,
		FrameLeaveRoom:   m.handleLeaveRoom,
		FrameTyping:      m.handleTyping,
		FrameReadReceipt: m.handleReadReceipt,
		FramePing:        m.handlePing,
	}
	return m
}

// Serve registers the client, pushes history, announces presence, and runs
// the pumps. Blocks until the connection dies.
func (m *Mediator) Serve(c *Client) {
	ctx := context.Background()

	m.hub.Join(c.RoomID, c.TopicID, c.UserID, c)

	go c.writePump()

	messages, err := m.chat.RecentDecrypted(ctx, c.RoomID, c.TopicID, m.historyLimit)
	if err != nil {
		m.logger.Warn("Mediator", "history push failed", map[string]interface{}{
			"room_id": c.RoomID, "topic_id": c.TopicID, "error": err.Error(),
		})
		messages = []dto.ChatHistoryMessage{}
	}
	c.trySend(mustMarshal(RoomHistoryFrame{Type: FrameRoomHistory, Messages: messages}))

	m.hub.BroadcastToTopic(c.RoomID, c.TopicID, mustMarshal(newPresenceFrame(FrameUserJoined, c.UserID)), c)

	c.readPump(m)
}

// HandleFrame dispatches one raw frame. Returns false when the connection
// should close.
func (m *Mediator) HandleFrame(c *Client, raw []byte) (keepOpen bool) {
	keepOpen = true

	// One failure boundary per frame: a panicking handler answers an error
	// frame instead of killing the loop.
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Mediator", "frame handler panic", map[string]interface{}{
				"user_id": c.UserID, "panic": r,
			})
			c.trySend(mustMarshal(newErrorFrame("internal error handling frame")))
		}
	}()

	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.trySend(mustMarshal(newErrorFrame("malformed frame")))
		return true
	}

	handler, ok := m.handlers[frame.Type]
	if !ok {
		c.trySend(mustMarshal(newErrorFrame("unknown frame type: " + string(frame.Type))))
		return true
	}

	return handler(context.Background(), c, frame)
}

// HandleDisconnect finalizes a dead connection: deregister and tell the
// remaining topic sessions.
func (m *Mediator) HandleDisconnect(c *Client) {
	m.hub.Leave(c)
	m.hub.BroadcastToTopic(c.RoomID, c.TopicID, mustMarshal(newPresenceFrame(FrameUserLeft, c.UserID)), c)
}

// persistEncrypted seals the plaintext under the topic key and appends it to
// the log. A persistence failure is logged, not returned: delivery proceeds
// regardless, durability is best-effort.
func (m *Mediator) persistEncrypted(ctx context.Context, c *Client, msg *entity.ChatMessage, plaintext string) bool {
	keyMaterial, err := m.keys.KeyMaterial(ctx, c.TopicID)
	if err != nil {
		m.logger.Error("Mediator", "topic key unavailable", map[string]interface{}{
			"topic_id": c.TopicID, "error": err.Error(),
		})
		c.trySend(mustMarshal(newErrorFrame("topic cannot accept messages")))
		return false
	}

	ciphertext, err := m.cipher.Encrypt(keyMaterial, c.TopicID.String(), plaintext)
	if err != nil {
		m.logger.Error("Mediator", "encryption failed", map[string]interface{}{
			"topic_id": c.TopicID, "error": err.Error(),
		})
		c.trySend(mustMarshal(newErrorFrame("message could not be secured")))
		return false
	}

	msg.Content = ciphertext
	if err := m.chat.Append(ctx, c.RoomID, c.TopicID, *msg); err != nil {
		m.logger.Warn("Mediator", "chat log write failed, delivering anyway", map[string]interface{}{
			"room_id": c.RoomID, "topic_id": c.TopicID, "message_id": msg.MessageId, "error": err.Error(),
		})
	}
	return true
}

func (m *Mediator) handleChat(ctx context.Context, c *Client, frame InboundFrame) bool {
	content := strings.TrimSpace(frame.Content)
	if content == "" {
		c.trySend(mustMarshal(newErrorFrame("empty chat content")))
		return true
	}

	msg := entity.ChatMessage{
		MessageId: uuid.New(),
		SenderId:  c.UserID,
		Type:      entity.MessageTypeText,
		Timestamp: time.Now().UTC(),
	}
	if !m.persistEncrypted(ctx, c, &msg, content) {
		return true
	}

	out := mustMarshal(newChatMessageFrame(msg.MessageId, c.UserID, content, msg.Timestamp))
	m.hub.BroadcastToTopic(c.RoomID, c.TopicID, out, nil)
	return true
}

func (m *Mediator) handleAIRequest(ctx context.Context, c *Client, frame InboundFrame) bool {
	content := strings.TrimSpace(frame.Content)
	if !strings.HasPrefix(content, m.triggerPrefix) {
		c.trySend(mustMarshal(newErrorFrame("ai_request content must start with " + m.triggerPrefix)))
		return true
	}
	question := strings.TrimSpace(strings.TrimPrefix(content, m.triggerPrefix))
	if question == "" {
		c.trySend(mustMarshal(newErrorFrame("empty question")))
		return true
	}

	// The trigger message itself is part of the conversation.
	trigger := entity.ChatMessage{
		MessageId: uuid.New(),
		SenderId:  c.UserID,
		Type:      entity.MessageTypeText,
		Timestamp: time.Now().UTC(),
	}
	if !m.persistEncrypted(ctx, c, &trigger, content) {
		return true
	}
	m.hub.BroadcastToTopic(c.RoomID, c.TopicID, mustMarshal(newChatMessageFrame(trigger.MessageId, c.UserID, content, trigger.Timestamp)), nil)

	documentId, err := m.docs.Document(ctx, c.TopicID)
	if err != nil {
		m.logger.Error("Mediator", "document resolution failed", map[string]interface{}{
			"topic_id": c.TopicID, "error": err.Error(),
		})
		c.trySend(mustMarshal(newErrorFrame("could not resolve topic document")))
		return true
	}

	if documentId == nil {
		// No document pinned: answer the fixed fallback without a model call.
		m.deliverAnswer(ctx, c, &rag.Answer{Text: rag.FallbackAnswer})
		return true
	}

	// The answer outlives this connection: if the asker disconnects, the
	// topic still receives it.
	go func(roomId, topicId, userId, docId uuid.UUID) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("Mediator", "answer delivery panic", map[string]interface{}{
					"topic_id": topicId, "panic": r,
				})
			}
		}()

		dctx := context.Background()
		answer, err := m.answerer.Answer(dctx, docId, userId, question)
		if err != nil {
			m.logger.Error("Mediator", "answer generation failed", map[string]interface{}{
				"topic_id": topicId, "document_id": docId, "error": err.Error(),
			})
			c.trySend(mustMarshal(newErrorFrame("AI request failed or timed out")))
			return
		}
		m.deliverAnswer(dctx, c, answer)

		if m.eventPublisher != nil {
			evt := events.NewAIResponse(roomId.String(), topicId.String(), userId.String(), answer.TokensUsed, answer.ProcessingTime.Milliseconds())
			if err := m.eventPublisher.Publish(dctx, evt); err != nil {
				m.logger.Warn("Mediator", "failed to publish AI_RESPONSE_GENERATED", map[string]interface{}{"error": err.Error()})
			}
		}
	}(c.RoomID, c.TopicID, c.UserID, *documentId)

	return true
}

// deliverAnswer persists the AI-authored message encrypted and broadcasts it
// to the whole topic, asker included.
func (m *Mediator) deliverAnswer(ctx context.Context, c *Client, answer *rag.Answer) {
	meta := ResponseMetadata{
		TokensUsed:       answer.TokensUsed,
		ProcessingMillis: answer.ProcessingTime.Milliseconds(),
	}
	msg := entity.ChatMessage{
		MessageId: uuid.New(),
		SenderId:  uuid.Nil,
		Type:      entity.MessageTypeAI,
		IsAI:      true,
		Timestamp: time.Now().UTC(),
		Metadata: map[string]interface{}{
			"tokens_used":     meta.TokensUsed,
			"processing_time": meta.ProcessingMillis,
		},
	}
	if !m.persistEncrypted(ctx, c, &msg, answer.Text) {
		return
	}
	m.hub.BroadcastToTopic(c.RoomID, c.TopicID, mustMarshal(newAIResponseFrame(msg.MessageId, answer.Text, msg.Timestamp, meta)), nil)
}

func (m *Mediator) handleJoinRoom(ctx context.Context, c *Client, frame InboundFrame) bool {
	// Presence is established at the handshake; an explicit join_room frame
	// just re-announces it.
	m.hub.BroadcastToTopic(c.RoomID, c.TopicID, mustMarshal(newPresenceFrame(FrameUserJoined, c.UserID)), c)
	return true
}

func (m *Mediator) handleLeaveRoom(ctx context.Context, c *Client, frame InboundFrame) bool {
	// Close the loop; readPump's disconnect path deregisters and announces.
	return false
}

func (m *Mediator) handleTyping(ctx context.Context, c *Client, frame InboundFrame) bool {
	// Broadcast-only, never persisted.
	out := mustMarshal(TypingFrame{Type: FrameTyping, UserId: c.UserID, IsTyping: frame.IsTyping})
	m.hub.BroadcastToTopic(c.RoomID, c.TopicID, out, c)
	return true
}

func (m *Mediator) handleReadReceipt(ctx context.Context, c *Client, frame InboundFrame) bool {
	// Broadcast-only, never persisted.
	out := mustMarshal(ReadReceiptFrame{Type: FrameReadReceipt, UserId: c.UserID, MessageId: frame.MessageId})
	m.hub.BroadcastToTopic(c.RoomID, c.TopicID, out, c)
	return true
}

func (m *Mediator) handlePing(ctx context.Context, c *Client, frame InboundFrame) bool {
	c.trySend(mustMarshal(PongFrame{Type: FramePong, Timestamp: time.Now().UTC()}))
	return true
}
