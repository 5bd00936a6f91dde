package contract

import (
	"context"

	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatLogRepository interface {
	Create(ctx context.Context, log *entity.ChatLog) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatLog, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatLog, error)
	// AppendMessage concatenates the message onto the log's jsonb array in
	// acceptance order. Returns gorm.ErrRecordNotFound when no log row
	// exists for the scope yet.
	AppendMessage(ctx context.Context, roomId, topicId uuid.UUID, msg entity.ChatMessage) error
	// Clear resets the message array to empty without deleting the row.
	Clear(ctx context.Context, roomId, topicId uuid.UUID) error
	DeleteByRoomId(ctx context.Context, roomId uuid.UUID) error
}
