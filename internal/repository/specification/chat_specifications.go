package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByRoom filters rows scoped to a room.
type ByRoom struct {
	RoomId uuid.UUID
}

func (s ByRoom) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("room_id = ?", s.RoomId)
}

// ByScope filters chat logs by their (room, topic) scope.
type ByScope struct {
	RoomId  uuid.UUID
	TopicId uuid.UUID
}

func (s ByScope) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("room_id = ? AND topic_id = ?", s.RoomId, s.TopicId)
}

// ByOwner filters documents and chunks by their owner.
type ByOwner struct {
	OwnerId uuid.UUID
}

func (s ByOwner) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ?", s.OwnerId)
}

// ByDocument filters chunks by their parent document.
type ByDocument struct {
	DocumentId uuid.UUID
}

func (s ByDocument) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentId)
}

// ActiveOnly keeps rows whose is_active flag is set.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}
