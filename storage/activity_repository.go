package storage

import (
	"context"
	"fmt"
	"time"

	"pulse-lab/domain"
	"pulse-lab/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

// ActivityRepository stores focus sessions and tasks, keyed by owner so a
// user can never complete somebody else's session.
type ActivityRepository struct {
	db *badger.DB
}

func NewActivityRepository(db *badger.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (a *ActivityRepository) CreateFocusSession(ctx context.Context, session domain.FocusSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := a.db.Update(func(txn *badger.Txn) error {
		return setValue(txn, focusKey(string(session.UserID), session.ID.String()), fromFocusSession(session))
	})
	return mapError(err)
}

// CompleteFocusSession fails with errors.ErrConflict when the session is already completed.
func (a *ActivityRepository) CompleteFocusSession(ctx context.Context, user domain.UserID,
	id uuid.UUID, at time.Time) (domain.FocusSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.FocusSession{}, err
	}
	var session domain.FocusSession
	err := a.db.Update(func(txn *badger.Txn) error {
		key := focusKey(string(user), id.String())
		s, err := getValue(txn, key)
		if err != nil {
			return err
		}
		session, err = toFocusSession(s)
		if err != nil {
			return err
		}
		if session.Completed() {
			return fmt.Errorf("%w: focus session %s already completed", errors.ErrConflict, id)
		}
		completedAt := at.UTC()
		session.CompletedAt = &completedAt
		return setValue(txn, key, fromFocusSession(session))
	})
	if err != nil {
		return domain.FocusSession{}, mapError(err)
	}
	return session, nil
}

func (a *ActivityRepository) CreateTask(ctx context.Context, task domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := a.db.Update(func(txn *badger.Txn) error {
		return setValue(txn, taskKey(string(task.UserID), task.ID.String()), fromTask(task))
	})
	return mapError(err)
}

// CompleteTask fails with errors.ErrConflict when the task is already completed.
func (a *ActivityRepository) CompleteTask(ctx context.Context, user domain.UserID,
	id uuid.UUID, at time.Time) (domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}
	var task domain.Task
	err := a.db.Update(func(txn *badger.Txn) error {
		key := taskKey(string(user), id.String())
		s, err := getValue(txn, key)
		if err != nil {
			return err
		}
		task, err = toTask(s)
		if err != nil {
			return err
		}
		if task.Completed() {
			return fmt.Errorf("%w: task %s already completed", errors.ErrConflict, id)
		}
		completedAt := at.UTC()
		task.CompletedAt = &completedAt
		return setValue(txn, key, fromTask(task))
	})
	if err != nil {
		return domain.Task{}, mapError(err)
	}
	return task, nil
}

func fromFocusSession(f domain.FocusSession) map[string]any {
	return map[string]any{
		"id":           f.ID.String(),
		"user_id":      string(f.UserID),
		"duration_sec": int64(f.Duration / time.Second),
		"started_at":   formatTime(f.StartedAt),
		"completed_at": formatOptionalTime(f.CompletedAt),
	}
}

func toFocusSession(s *structpb.Struct) (domain.FocusSession, error) {
	id, err := uuid.Parse(str(s, "id"))
	if err != nil {
		return domain.FocusSession{}, err
	}
	startedAt, err := parseTime(s, "started_at")
	if err != nil {
		return domain.FocusSession{}, err
	}
	completedAt, err := optionalTime(s, "completed_at")
	if err != nil {
		return domain.FocusSession{}, err
	}
	return domain.FocusSession{
		ID:          id,
		UserID:      domain.UserID(str(s, "user_id")),
		Duration:    time.Duration(num(s, "duration_sec")) * time.Second,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
	}, nil
}

func fromTask(t domain.Task) map[string]any {
	return map[string]any{
		"id":           t.ID.String(),
		"user_id":      string(t.UserID),
		"title":        t.Title,
		"created_at":   formatTime(t.CreatedAt),
		"completed_at": formatOptionalTime(t.CompletedAt),
	}
}

func toTask(s *structpb.Struct) (domain.Task, error) {
	id, err := uuid.Parse(str(s, "id"))
	if err != nil {
		return domain.Task{}, err
	}
	createdAt, err := parseTime(s, "created_at")
	if err != nil {
		return domain.Task{}, err
	}
	completedAt, err := optionalTime(s, "completed_at")
	if err != nil {
		return domain.Task{}, err
	}
	return domain.Task{
		ID:          id,
		UserID:      domain.UserID(str(s, "user_id")),
		Title:       str(s, "title"),
		CreatedAt:   createdAt,
		CompletedAt: completedAt,
	}, nil
}
