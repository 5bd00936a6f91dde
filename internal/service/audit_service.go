package service

import (
	"context"
	"strings"

	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/pkg/logger"
	"ai-studyroom-be/internal/repository/unitofwork"
	"ai-studyroom-be/pkg/events"
	pktNats "ai-studyroom-be/pkg/nats"

	"github.com/google/uuid"
)

type IAuditService interface {
	Start() error
}

// auditService drains the NATS event stream into the system_logs table so
// chat and ingestion activity is queryable after the fact.
type auditService struct {
	subscriber *pktNats.Subscriber
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewAuditService(subscriber *pktNats.Subscriber, uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IAuditService {
	return &auditService{
		subscriber: subscriber,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *auditService) Start() error {
	return s.subscriber.Subscribe("events.>", "audit-writer", s.handleEvent)
}

func (s *auditService) handleEvent(ctx context.Context, event events.Event) error {
	// Subject arrives as events.<TYPE>
	source := strings.TrimPrefix(event.EventType(), "events.")

	uow := s.uowFactory.NewUnitOfWork(ctx)
	err := uow.SystemLogRepository().Create(ctx, &entity.SystemLog{
		Id:        uuid.New(),
		Source:    source,
		Message:   "event recorded",
		Details:   event.Payload(),
		CreatedAt: event.Timestamp(),
	})
	if err != nil {
		s.logger.Error("Audit", "failed to persist event", map[string]interface{}{
			"source": source, "error": err.Error(),
		})
		return err
	}
	return nil
}
