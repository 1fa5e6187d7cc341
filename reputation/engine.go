// Package reputation applies reputation actions to stored records,
// one user at a time.
package reputation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pulse-lab/contract"
	"pulse-lab/domain"
	"pulse-lab/errors"
)

// Engine wraps the pure transition with fetch, per-user exclusion and save.
// Chat and HTTP paths share the same engine, so the lock is per user and
// not per room.
type Engine struct {
	log        *slog.Logger
	repository contract.IReputationRepository
	locks      *keyedMutex
	clock      func() time.Time
}

func NewEngine(log *slog.Logger, repository contract.IReputationRepository) *Engine {
	return &Engine{
		log:        log,
		repository: repository,
		locks:      newKeyedMutex(),
		clock:      time.Now,
	}
}

// WithClock replaces the wall clock, streaks depend on the local calendar day.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// Apply runs one action for one user. Every failure wraps errors.ErrReputationUpdate.
func (e *Engine) Apply(ctx context.Context, user domain.UserID, action domain.ReputationAction) (domain.ReputationRecord, error) {
	unlock := e.locks.Lock(user)
	defer unlock()

	now := e.clock()
	record, err := e.repository.FetchOrCreate(ctx, user, now)
	if err != nil {
		return domain.ReputationRecord{}, fmt.Errorf("%w: fetch %s: %v", errors.ErrReputationUpdate, user, err)
	}

	next, err := domain.ApplyAction(record, action, now)
	if err != nil {
		return domain.ReputationRecord{}, fmt.Errorf("%w: %v", errors.ErrReputationUpdate, err)
	}

	if err = e.repository.Save(ctx, next); err != nil {
		return domain.ReputationRecord{}, fmt.Errorf("%w: save %s: %v", errors.ErrReputationUpdate, user, err)
	}

	e.log.Debug("Reputation updated",
		"user_id", user,
		"action", action.String(),
		"points", next.Points,
		"level", next.Level,
		"streak", next.FocusStreak)
	return next, nil
}
