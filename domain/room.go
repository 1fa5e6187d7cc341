package domain

import "time"

type RoomID string

type Room struct {
	ID        RoomID
	Name      string
	CreatedAt time.Time
}

// Membership is the durable record that a user has joined a room at least once.
// It is independent of live presence.
type Membership struct {
	RoomID     RoomID
	UserID     UserID
	JoinedAt   time.Time
	LastReadAt *time.Time
}
