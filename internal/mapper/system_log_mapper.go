package mapper

import (
	"encoding/json"

	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/model"
)

type SystemLogMapper struct{}

func NewSystemLogMapper() *SystemLogMapper {
	return &SystemLogMapper{}
}

func (m *SystemLogMapper) ToEntity(l *model.SystemLog) *entity.SystemLog {
	if l == nil {
		return nil
	}

	var details map[string]interface{}
	if len(l.Details) > 0 {
		_ = json.Unmarshal(l.Details, &details)
	}

	return &entity.SystemLog{
		Id:        l.Id,
		Source:    l.Source,
		Message:   l.Message,
		Details:   details,
		CreatedAt: l.CreatedAt,
	}
}

func (m *SystemLogMapper) ToModel(l *entity.SystemLog) *model.SystemLog {
	if l == nil {
		return nil
	}

	details, _ := json.Marshal(l.Details)

	return &model.SystemLog{
		Id:        l.Id,
		Source:    l.Source,
		Message:   l.Message,
		Details:   details,
		CreatedAt: l.CreatedAt,
	}
}
