package entity

import (
	"time"

	"github.com/google/uuid"
)

// Topic is a sub-channel of a room. EncryptionKey is generated exactly once
// at creation and never rotated; a topic without a key cannot accept chat
// frames. DocumentId optionally pins the uploaded document the AI participant
// answers from.
type Topic struct {
	Id            uuid.UUID
	RoomId        uuid.UUID
	Title         string
	EncryptionKey string
	DocumentId    *uuid.UUID
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
