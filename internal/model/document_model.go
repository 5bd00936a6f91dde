package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Document struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OwnerId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Filename  string         `gorm:"not null"`
	Title     string         `gorm:"not null"`
	Content   string         `gorm:"type:text"`
	ChunkIds  datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt *time.Time     `gorm:"autoUpdateTime:false"`
}

func (Document) TableName() string {
	return "documents"
}
