package entity

import (
	"time"

	"github.com/google/uuid"
)

// Room is owned by the external collaboration service; the chat core only
// reads identity, membership and the join-password hash.
type Room struct {
	Id           uuid.UUID
	Name         string
	PasswordHash string
	MemberIds    []uuid.UUID
	IsActive     bool
	CreatedAt    time.Time
}

// HasMember reports whether userId participates in the room.
func (r *Room) HasMember(userId uuid.UUID) bool {
	for _, id := range r.MemberIds {
		if id == userId {
			return true
		}
	}
	return false
}
