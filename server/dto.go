package server

import (
	"time"

	"pulse-lab/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

type CreateRoomRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

type StartFocusRequest struct {
	DurationMinutes int `json:"durationMinutes" validate:"gte=0,lte=1440"`
}

type CreateTaskRequest struct {
	Title string `json:"title" validate:"required,max=256"`
}

type RoomResponse struct {
	ID        domain.RoomID `json:"id"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"createdAt"`
}

type MessageResponse struct {
	ID        uuid.UUID            `json:"id"`
	RoomID    domain.RoomID        `json:"roomId"`
	SenderID  domain.UserID        `json:"senderId"`
	Content   string               `json:"content"`
	Lang      string               `json:"lang,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	Sender    domain.SenderPayload `json:"sender"`
}

type MessagePageResponse struct {
	Messages   []MessageResponse `json:"messages"`
	NextCursor *string           `json:"nextCursor,omitempty"`
}

type FocusSessionResponse struct {
	ID              uuid.UUID  `json:"id"`
	DurationMinutes int        `json:"durationMinutes"`
	StartedAt       time.Time  `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type ReputationResponse struct {
	UserID      domain.UserID `json:"userId"`
	Points      int           `json:"points"`
	Level       domain.Level  `json:"level"`
	FocusStreak int           `json:"focusStreak"`
	LastFocusAt *time.Time    `json:"lastFocusAt,omitempty"`
	Badges      []string      `json:"badges"`
}

func toRoomResponse(r domain.Room) RoomResponse {
	return RoomResponse{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
}

func toMessageResponses(messages []domain.Message) []MessageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) MessageResponse {
		return MessageResponse{
			ID:        m.ID,
			RoomID:    m.RoomID,
			SenderID:  m.SenderID,
			Content:   m.Content,
			Lang:      m.Lang,
			CreatedAt: m.CreatedAt,
			Sender: domain.SenderPayload{
				ID:          m.Sender.UserID,
				DisplayName: m.Sender.DisplayName,
				AvatarURL:   m.Sender.AvatarURL,
			},
		}
	})
}

func toFocusSessionResponse(f domain.FocusSession) FocusSessionResponse {
	return FocusSessionResponse{
		ID:              f.ID,
		DurationMinutes: int(f.Duration / time.Minute),
		StartedAt:       f.StartedAt,
		CompletedAt:     f.CompletedAt,
	}
}

func toTaskResponse(t domain.Task) TaskResponse {
	return TaskResponse{ID: t.ID, Title: t.Title, CreatedAt: t.CreatedAt, CompletedAt: t.CompletedAt}
}

func toReputationResponse(r domain.ReputationRecord) ReputationResponse {
	return ReputationResponse{
		UserID:      r.UserID,
		Points:      r.Points,
		Level:       r.Level,
		FocusStreak: r.FocusStreak,
		LastFocusAt: r.LastFocusAt,
		Badges:      lo.Map(r.Badges, func(b domain.Badge, _ int) string { return string(b) }),
	}
}
