package unitofwork

import (
	"context"

	"ai-studyroom-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	RoomRepository() contract.RoomRepository
	TopicRepository() contract.TopicRepository
	ChatLogRepository() contract.ChatLogRepository
	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	SystemLogRepository() contract.SystemLogRepository
}
