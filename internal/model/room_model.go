package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Room struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name         string         `gorm:"not null"`
	PasswordHash string         `gorm:"type:text"`
	MemberIds    datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	IsActive     bool           `gorm:"default:true"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

func (Room) TableName() string {
	return "rooms"
}
