//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks
package contract

import (
	"context"
	"time"

	"pulse-lab/domain"

	"github.com/google/uuid"
)

// Every store call is a single request/response with no retry.
// Failures are errors.ErrNotFound, errors.ErrConflict or errors.ErrTransient.

type IRoomStore interface {
	CreateRoom(ctx context.Context, name string) (domain.Room, error)
	GetRoom(ctx context.Context, id domain.RoomID) (domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	EnsureMembership(ctx context.Context, room domain.RoomID, user domain.UserID, at time.Time) (domain.Membership, error)
	MarkRead(ctx context.Context, room domain.RoomID, user domain.UserID, at time.Time) error
}

type IMessageGateway interface {
	Persist(ctx context.Context, message domain.NewMessage) (domain.Message, error)
}

type IMessageRepository interface {
	StoreMessage(ctx context.Context, message domain.Message) error
	GetMessages(ctx context.Context, room domain.RoomID, cursor *string) ([]domain.Message, *string, error)
}

type IMessageIndex interface {
	Index(ctx context.Context, message domain.Message) error
	Search(ctx context.Context, room domain.RoomID, query string, limit int) ([]domain.Message, error)
}

type IProfileRepository interface {
	GetProfile(ctx context.Context, user domain.UserID) (domain.Profile, error)
	SaveProfile(ctx context.Context, profile domain.Profile) error
}

type IReputationRepository interface {
	FetchOrCreate(ctx context.Context, user domain.UserID, now time.Time) (domain.ReputationRecord, error)
	Save(ctx context.Context, record domain.ReputationRecord) error
	List(ctx context.Context) ([]domain.ReputationRecord, error)
}

type IActivityRepository interface {
	CreateFocusSession(ctx context.Context, session domain.FocusSession) error
	CompleteFocusSession(ctx context.Context, user domain.UserID, id uuid.UUID, at time.Time) (domain.FocusSession, error)
	CreateTask(ctx context.Context, task domain.Task) error
	CompleteTask(ctx context.Context, user domain.UserID, id uuid.UUID, at time.Time) (domain.Task, error)
}
