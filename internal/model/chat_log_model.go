package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChatLog mirrors the document shape the frontend expects: one row per
// (room, topic) with the full message array as JSONB. Appends go through a
// jsonb concatenation so ordering is the order the server accepted messages.
type ChatLog struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RoomId       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_chat_logs_scope"`
	TopicId      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_chat_logs_scope"`
	Messages     datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	IsActive     bool           `gorm:"default:true"`
	LastActivity time.Time      `gorm:"not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

func (ChatLog) TableName() string {
	return "chat_logs"
}
