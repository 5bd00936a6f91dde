package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/mapper"
	"ai-studyroom-be/internal/model"
	"ai-studyroom-be/internal/repository/contract"
	"ai-studyroom-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatLogMapper
}

func NewChatLogRepository(db *gorm.DB) contract.ChatLogRepository {
	return &ChatLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatLogMapper(),
	}
}

func (r *ChatLogRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatLogRepositoryImpl) Create(ctx context.Context, log *entity.ChatLog) error {
	m := r.mapper.ToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChatLogRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatLog, error) {
	var m model.ChatLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ChatLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatLog, error) {
	var models []*model.ChatLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatLog, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// AppendMessage pushes one message onto the jsonb array in a single UPDATE
// so concurrent appends interleave without losing writes. The row must
// already exist; callers lazily create it on ErrRecordNotFound.
func (r *ChatLogRepositoryImpl) AppendMessage(ctx context.Context, roomId, topicId uuid.UUID, msg entity.ChatMessage) error {
	payload, err := json.Marshal([]entity.ChatMessage{msg})
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&model.ChatLog{}).
		Where("room_id = ? AND topic_id = ?", roomId, topicId).
		Updates(map[string]interface{}{
			"messages":      gorm.Expr("messages || ?::jsonb", string(payload)),
			"last_activity": msg.Timestamp,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ChatLogRepositoryImpl) Clear(ctx context.Context, roomId, topicId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.ChatLog{}).
		Where("room_id = ? AND topic_id = ?", roomId, topicId).
		Updates(map[string]interface{}{
			"messages":      gorm.Expr("'[]'::jsonb"),
			"last_activity": time.Now().UTC(),
		}).Error
}

func (r *ChatLogRepositoryImpl) DeleteByRoomId(ctx context.Context, roomId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("room_id = ?", roomId).Delete(&model.ChatLog{}).Error
}
