package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-studyroom-be/internal/apperr"
	"ai-studyroom-be/internal/dto"
	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/pkg/logger"
	"ai-studyroom-be/internal/repository/specification"
	"ai-studyroom-be/internal/repository/unitofwork"
	"ai-studyroom-be/pkg/events"
	pktNats "ai-studyroom-be/pkg/nats"
	"ai-studyroom-be/pkg/topiccrypt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const chatTailTTL = 30 * time.Second

type IChatService interface {
	// Append persists one message to the (room, topic) log, creating the
	// log row on first write. One retry on transient failure; the caller
	// decides whether delivery proceeds when persistence still fails.
	Append(ctx context.Context, roomId, topicId uuid.UUID, msg entity.ChatMessage) error
	// Recent returns the trailing limit messages, still encrypted.
	Recent(ctx context.Context, roomId, topicId uuid.UUID, limit int) ([]entity.ChatMessage, error)
	// RecentDecrypted returns the trailing limit messages decrypted with the
	// topic key. Messages that fail decryption are dropped, not surfaced.
	RecentDecrypted(ctx context.Context, roomId, topicId uuid.UUID, limit int) ([]dto.ChatHistoryMessage, error)
	Clear(ctx context.Context, roomId, topicId uuid.UUID) error
	// VerifyParticipant checks the room exists, is active, lists the user as
	// a member, and that the topic belongs to the room.
	VerifyParticipant(ctx context.Context, roomId, topicId, userId uuid.UUID) error
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	gateway        *topiccrypt.Gateway
	keyService     ITopicKeyService
	eventPublisher *pktNats.Publisher
	rdb            *redis.Client
	logger         logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	gateway *topiccrypt.Gateway,
	keyService ITopicKeyService,
	eventPublisher *pktNats.Publisher,
	rdb *redis.Client,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		gateway:        gateway,
		keyService:     keyService,
		eventPublisher: eventPublisher,
		rdb:            rdb,
		logger:         log,
	}
}

func (s *chatService) tailKey(roomId, topicId uuid.UUID) string {
	return fmt.Sprintf("chat:tail:%s:%s", roomId, topicId)
}

func (s *chatService) invalidateTail(ctx context.Context, roomId, topicId uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, s.tailKey(roomId, topicId)).Err(); err != nil {
		s.logger.Warn("ChatService", "tail cache invalidation failed", map[string]interface{}{
			"room_id": roomId, "topic_id": topicId, "error": err.Error(),
		})
	}
}

func (s *chatService) Append(ctx context.Context, roomId, topicId uuid.UUID, msg entity.ChatMessage) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatLogRepository()

	err := repo.AppendMessage(ctx, roomId, topicId, msg)
	if err == gorm.ErrRecordNotFound {
		// First message for this scope: create the log row, then append.
		now := time.Now().UTC()
		createErr := repo.Create(ctx, &entity.ChatLog{
			Id:           uuid.New(),
			RoomId:       roomId,
			TopicId:      topicId,
			Messages:     []entity.ChatMessage{},
			IsActive:     true,
			LastActivity: now,
			CreatedAt:    now,
		})
		// A concurrent writer may have created it first; the unique scope
		// index makes that a benign conflict.
		if createErr != nil {
			s.logger.Warn("ChatService", "chat log create raced", map[string]interface{}{
				"room_id": roomId, "topic_id": topicId, "error": createErr.Error(),
			})
		}
		err = repo.AppendMessage(ctx, roomId, topicId, msg)
	} else if err != nil {
		// One retry for transient failures.
		err = repo.AppendMessage(ctx, roomId, topicId, msg)
	}

	if err != nil {
		return apperr.Wrap(apperr.ErrPersistence, err)
	}

	s.invalidateTail(ctx, roomId, topicId)
	return nil
}

func (s *chatService) Recent(ctx context.Context, roomId, topicId uuid.UUID, limit int) ([]entity.ChatMessage, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, s.tailKey(roomId, topicId)).Bytes(); err == nil {
			if messages, ok := tailFromCache(cached, limit); ok {
				return messages, nil
			}
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	log, err := uow.ChatLogRepository().FindOne(ctx, specification.ByScope{RoomId: roomId, TopicId: topicId})
	if err != nil {
		return nil, err
	}
	if log == nil {
		return []entity.ChatMessage{}, nil
	}

	tail := log.Recent(limit)
	if s.rdb != nil {
		if data, err := json.Marshal(tail); err == nil {
			s.rdb.Set(ctx, s.tailKey(roomId, topicId), data, chatTailTTL)
		}
	}
	return tail, nil
}

func (s *chatService) RecentDecrypted(ctx context.Context, roomId, topicId uuid.UUID, limit int) ([]dto.ChatHistoryMessage, error) {
	messages, err := s.Recent(ctx, roomId, topicId, limit)
	if err != nil {
		return nil, err
	}

	keyMaterial, err := s.keyService.KeyMaterial(ctx, topicId)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ChatHistoryMessage, 0, len(messages))
	for _, m := range messages {
		plaintext, err := s.gateway.Decrypt(keyMaterial, topicId.String(), m.Content)
		if err != nil {
			s.logger.Warn("ChatService", "dropping undecryptable message", map[string]interface{}{
				"room_id": roomId, "topic_id": topicId, "message_id": m.MessageId,
			})
			continue
		}
		out = append(out, dto.ChatHistoryMessage{
			MessageId: m.MessageId,
			SenderId:  m.SenderId,
			Content:   plaintext,
			Type:      string(m.Type),
			IsAI:      m.IsAI,
			Timestamp: m.Timestamp,
			Metadata:  m.Metadata,
		})
	}
	return out, nil
}

func (s *chatService) Clear(ctx context.Context, roomId, topicId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatLogRepository().Clear(ctx, roomId, topicId); err != nil {
		return apperr.Wrap(apperr.ErrPersistence, err)
	}
	s.invalidateTail(ctx, roomId, topicId)

	if s.eventPublisher != nil {
		evt := events.NewChatLogCleared(roomId.String(), topicId.String())
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("ChatService", "failed to publish CHAT_LOG_CLEARED", map[string]interface{}{
				"room_id": roomId, "topic_id": topicId, "error": err.Error(),
			})
		}
	}
	return nil
}

func (s *chatService) VerifyParticipant(ctx context.Context, roomId, topicId, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	room, err := uow.RoomRepository().FindOne(ctx, specification.ByID{ID: roomId})
	if err != nil {
		return err
	}
	if room == nil || !room.IsActive {
		return apperr.Wrapf(apperr.ErrMembership, "room %s not found or inactive", roomId)
	}
	if !room.HasMember(userId) {
		return apperr.Wrapf(apperr.ErrMembership, "user %s is not a member of room %s", userId, roomId)
	}

	topic, err := uow.TopicRepository().FindOne(ctx, specification.ByID{ID: topicId})
	if err != nil {
		return err
	}
	if topic == nil || !topic.IsActive || topic.RoomId != roomId {
		return apperr.Wrapf(apperr.ErrMembership, "topic %s does not belong to room %s", topicId, roomId)
	}
	return nil
}

// tailFromCache decodes a cached tail and decides whether it can serve the
// request. A tail trimmed by a smaller earlier query may hide messages the
// caller asked for, so it only serves requests it fully covers.
func tailFromCache(data []byte, limit int) ([]entity.ChatMessage, bool) {
	var messages []entity.ChatMessage
	if json.Unmarshal(data, &messages) != nil {
		return nil, false
	}
	if limit <= 0 || len(messages) < limit {
		return nil, false
	}
	return trimTail(messages, limit), true
}

func trimTail(messages []entity.ChatMessage, limit int) []entity.ChatMessage {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}
