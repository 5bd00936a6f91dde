package service

import (
	"context"

	"ai-studyroom-be/internal/apperr"
	"ai-studyroom-be/internal/repository/memory"
	"ai-studyroom-be/internal/repository/specification"
	"ai-studyroom-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ITopicKeyService resolves a topic's key material for the encryption
// gateway. Keys are immutable, so cache hits never need revalidation.
type ITopicKeyService interface {
	KeyMaterial(ctx context.Context, topicId uuid.UUID) (string, error)
	Invalidate(topicId uuid.UUID)
}

type topicKeyService struct {
	uowFactory unitofwork.RepositoryFactory
	keyRepo    *memory.TopicKeyRepository
}

func NewTopicKeyService(uowFactory unitofwork.RepositoryFactory, keyRepo *memory.TopicKeyRepository) ITopicKeyService {
	return &topicKeyService{
		uowFactory: uowFactory,
		keyRepo:    keyRepo,
	}
}

func (s *topicKeyService) KeyMaterial(ctx context.Context, topicId uuid.UUID) (string, error) {
	if key, found := s.keyRepo.Get(topicId); found {
		return key, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	topic, err := uow.TopicRepository().FindOne(ctx, specification.ByID{ID: topicId})
	if err != nil {
		return "", err
	}
	if topic == nil || !topic.IsActive {
		return "", apperr.Wrapf(apperr.ErrMembership, "topic %s not found or inactive", topicId)
	}
	if topic.EncryptionKey == "" {
		return "", apperr.Wrapf(apperr.ErrDecrypt, "topic %s has no key material", topicId)
	}

	s.keyRepo.Save(topicId, topic.EncryptionKey)
	return topic.EncryptionKey, nil
}

func (s *topicKeyService) Invalidate(topicId uuid.UUID) {
	s.keyRepo.Delete(topicId)
}
