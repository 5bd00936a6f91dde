package mapper

import (
	"encoding/json"

	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/model"

	"github.com/google/uuid"
)

type RoomMapper struct{}

func NewRoomMapper() *RoomMapper {
	return &RoomMapper{}
}

func (m *RoomMapper) ToEntity(r *model.Room) *entity.Room {
	if r == nil {
		return nil
	}

	var memberIds []uuid.UUID
	if len(r.MemberIds) > 0 {
		_ = json.Unmarshal(r.MemberIds, &memberIds)
	}

	return &entity.Room{
		Id:           r.Id,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		MemberIds:    memberIds,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
	}
}

func (m *RoomMapper) ToModel(r *entity.Room) *model.Room {
	if r == nil {
		return nil
	}

	memberIds, _ := json.Marshal(r.MemberIds)

	return &model.Room{
		Id:           r.Id,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		MemberIds:    memberIds,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
	}
}

func (m *RoomMapper) ToEntities(rooms []*model.Room) []*entity.Room {
	entities := make([]*entity.Room, len(rooms))
	for i, r := range rooms {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
