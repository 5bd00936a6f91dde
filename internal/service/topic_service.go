package service

import (
	"context"

	"ai-studyroom-be/internal/apperr"
	"ai-studyroom-be/internal/repository/specification"
	"ai-studyroom-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ITopicService exposes the topic lookups the websocket layer needs without
// handing it the whole repository surface.
type ITopicService interface {
	// Document returns the id of the document pinned to the topic, or nil
	// when the topic has none.
	Document(ctx context.Context, topicId uuid.UUID) (*uuid.UUID, error)
}

type topicService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewTopicService(uowFactory unitofwork.RepositoryFactory) ITopicService {
	return &topicService{uowFactory: uowFactory}
}

func (s *topicService) Document(ctx context.Context, topicId uuid.UUID) (*uuid.UUID, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	topic, err := uow.TopicRepository().FindOne(ctx, specification.ByID{ID: topicId})
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, apperr.Wrapf(apperr.ErrValidation, "topic %s not found", topicId)
	}
	return topic.DocumentId, nil
}
