package entity

import (
	"time"

	"github.com/google/uuid"
)

// SystemLog is one audit row written by the event consumer for chat and
// ingestion activity.
type SystemLog struct {
	Id        uuid.UUID
	Source    string
	Message   string
	Details   map[string]interface{}
	CreatedAt time.Time
}
