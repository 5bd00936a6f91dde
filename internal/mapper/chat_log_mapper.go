package mapper

import (
	"encoding/json"

	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/model"
)

type ChatLogMapper struct{}

func NewChatLogMapper() *ChatLogMapper {
	return &ChatLogMapper{}
}

func (m *ChatLogMapper) ToEntity(l *model.ChatLog) *entity.ChatLog {
	if l == nil {
		return nil
	}

	var messages []entity.ChatMessage
	if len(l.Messages) > 0 {
		_ = json.Unmarshal(l.Messages, &messages)
	}

	return &entity.ChatLog{
		Id:           l.Id,
		RoomId:       l.RoomId,
		TopicId:      l.TopicId,
		Messages:     messages,
		IsActive:     l.IsActive,
		LastActivity: l.LastActivity,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func (m *ChatLogMapper) ToModel(l *entity.ChatLog) *model.ChatLog {
	if l == nil {
		return nil
	}

	messages, _ := json.Marshal(l.Messages)
	if l.Messages == nil {
		messages = []byte("[]")
	}

	return &model.ChatLog{
		Id:           l.Id,
		RoomId:       l.RoomId,
		TopicId:      l.TopicId,
		Messages:     messages,
		IsActive:     l.IsActive,
		LastActivity: l.LastActivity,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}
