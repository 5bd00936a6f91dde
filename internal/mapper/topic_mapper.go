package mapper

import (
	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/model"
)

type TopicMapper struct{}

func NewTopicMapper() *TopicMapper {
	return &TopicMapper{}
}

func (m *TopicMapper) ToEntity(t *model.Topic) *entity.Topic {
	if t == nil {
		return nil
	}

	return &entity.Topic{
		Id:            t.Id,
		RoomId:        t.RoomId,
		Title:         t.Title,
		EncryptionKey: t.EncryptionKey,
		DocumentId:    t.DocumentId,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (m *TopicMapper) ToModel(t *entity.Topic) *model.Topic {
	if t == nil {
		return nil
	}

	return &model.Topic{
		Id:            t.Id,
		RoomId:        t.RoomId,
		Title:         t.Title,
		EncryptionKey: t.EncryptionKey,
		DocumentId:    t.DocumentId,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (m *TopicMapper) ToEntities(topics []*model.Topic) []*entity.Topic {
	entities := make([]*entity.Topic, len(topics))
	for i, t := range topics {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
