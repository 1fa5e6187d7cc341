package domain

import (
	"time"

	"github.com/google/uuid"
)

// FactKind identifies an outbound notification.
type FactKind string

const (
	UserJoinedKind         FactKind = "user_joined"
	UserLeftKind           FactKind = "user_left"
	RoomStatsKind          FactKind = "room_stats"
	NewMessageKind         FactKind = "new_message"
	UserTypingKind         FactKind = "user_typing"
	UserStoppedTypingKind  FactKind = "user_stopped_typing"
	UserFocusingKind       FactKind = "user_focusing"
	UserCompletedFocusKind FactKind = "user_completed_focus"
	ErrorKind              FactKind = "error"
)

// Fact is the unit pushed to a connection's sink.
// RoomID is empty for facts that are not room-scoped.
type Fact struct {
	Kind    FactKind
	RoomID  RoomID
	Payload any
}

type PresencePayload struct {
	UserID      UserID    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Timestamp   time.Time `json:"timestamp"`
}

type RoomStatsPayload struct {
	OnlineCount int `json:"onlineCount"`
}

type SenderPayload struct {
	ID          UserID `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

type NewMessagePayload struct {
	ID        uuid.UUID     `json:"id"`
	RoomID    RoomID        `json:"roomId"`
	SenderID  UserID        `json:"senderId"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	Sender    SenderPayload `json:"sender"`
}

type UserPayload struct {
	UserID UserID `json:"userId"`
}

type FocusingPayload struct {
	UserID   UserID `json:"userId"`
	Duration int    `json:"duration"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func UserJoined(room RoomID, id Identity, at time.Time) Fact {
	return Fact{Kind: UserJoinedKind, RoomID: room, Payload: PresencePayload{
		UserID: id.UserID, DisplayName: id.DisplayName, Timestamp: at,
	}}
}

func UserLeft(room RoomID, id Identity, at time.Time) Fact {
	return Fact{Kind: UserLeftKind, RoomID: room, Payload: PresencePayload{
		UserID: id.UserID, DisplayName: id.DisplayName, Timestamp: at,
	}}
}

func RoomStats(room RoomID, onlineCount int) Fact {
	return Fact{Kind: RoomStatsKind, RoomID: room, Payload: RoomStatsPayload{OnlineCount: onlineCount}}
}

func NewMessagePosted(m Message) Fact {
	return Fact{Kind: NewMessageKind, RoomID: m.RoomID, Payload: NewMessagePayload{
		ID:        m.ID,
		RoomID:    m.RoomID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		Sender: SenderPayload{
			ID:          m.Sender.UserID,
			DisplayName: m.Sender.DisplayName,
			AvatarURL:   m.Sender.AvatarURL,
		},
	}}
}

func UserTyping(room RoomID, user UserID) Fact {
	return Fact{Kind: UserTypingKind, RoomID: room, Payload: UserPayload{UserID: user}}
}

func UserStoppedTyping(room RoomID, user UserID) Fact {
	return Fact{Kind: UserStoppedTypingKind, RoomID: room, Payload: UserPayload{UserID: user}}
}

func UserFocusing(user UserID, duration int) Fact {
	return Fact{Kind: UserFocusingKind, Payload: FocusingPayload{UserID: user, Duration: duration}}
}

func UserCompletedFocus(user UserID) Fact {
	return Fact{Kind: UserCompletedFocusKind, Payload: UserPayload{UserID: user}}
}

func ErrorFact(err error) Fact {
	return Fact{Kind: ErrorKind, Payload: ErrorPayload{Message: err.Error()}}
}
