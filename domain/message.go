// Package domain contains core concepts of the presence system.
// This file defines chat messages.
// Messages are immutable once persisted, except for the edit timestamp.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents a persisted chat message.
type Message struct {
	ID        uuid.UUID
	RoomID    RoomID
	SenderID  UserID
	Content   string
	Lang      string
	CreatedAt time.Time
	EditedAt  *time.Time
	Sender    Profile
}

// NewMessage is what the router hands over to the persistence gateway.
type NewMessage struct {
	RoomID    RoomID
	Sender    Identity
	Content   string
	CreatedAt time.Time
}
