package domain

import (
	"time"

	"github.com/google/uuid"
)

type FocusSession struct {
	ID          uuid.UUID
	UserID      UserID
	Duration    time.Duration
	StartedAt   time.Time
	CompletedAt *time.Time
}

func (f FocusSession) Completed() bool {
	return f.CompletedAt != nil
}

type Task struct {
	ID          uuid.UUID
	UserID      UserID
	Title       string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func (t Task) Completed() bool {
	return t.CompletedAt != nil
}

// ReputationJob is an asynchronous reputation update queued by the router.
type ReputationJob struct {
	UserID UserID
	Action ReputationAction
}
