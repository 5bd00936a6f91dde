package model

import (
	"time"

	"github.com/google/uuid"
)

type Topic struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RoomId        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title         string     `gorm:"not null"`
	EncryptionKey string     `gorm:"type:text;not null"`
	DocumentId    *uuid.UUID `gorm:"type:uuid"`
	IsActive      bool       `gorm:"default:true"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
	UpdatedAt     *time.Time `gorm:"autoUpdateTime:false"`
}

func (Topic) TableName() string {
	return "topics"
}
