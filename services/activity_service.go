package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"pulse-lab/contract"
	"pulse-lab/domain"
	"pulse-lab/errors"

	"github.com/google/uuid"
)

const maxTaskTitleLength = 256

type IActivityService interface {
	StartFocusSession(ctx context.Context, user domain.UserID, duration time.Duration) (domain.FocusSession, error)
	CompleteFocusSession(ctx context.Context, user domain.UserID, id uuid.UUID) (domain.FocusSession, error)
	CreateTask(ctx context.Context, user domain.UserID, title string) (domain.Task, error)
	CompleteTask(ctx context.Context, user domain.UserID, id uuid.UUID) (domain.Task, error)
	BookmarkArticle(ctx context.Context, user domain.UserID, articleID string) error
	GetReputation(ctx context.Context, user domain.UserID) (domain.ReputationRecord, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.ReputationRecord, error)
}

// ActivityService completes focus sessions and tasks, then scores them.
// The durable change is the operation's result: a failing reputation
// update is logged and never turns a completed task into an error.
type ActivityService struct {
	log         *slog.Logger
	activities  contract.IActivityRepository
	reputations contract.IReputationRepository
	engine      contract.IReputationEngine
	clock       func() time.Time
}

func NewActivityService(log *slog.Logger, activities contract.IActivityRepository,
	reputations contract.IReputationRepository, engine contract.IReputationEngine) *ActivityService {
	return &ActivityService{
		log:         log,
		activities:  activities,
		reputations: reputations,
		engine:      engine,
		clock:       time.Now,
	}
}

func (s *ActivityService) StartFocusSession(ctx context.Context, user domain.UserID, duration time.Duration) (domain.FocusSession, error) {
	if duration < 0 {
		return domain.FocusSession{}, fmt.Errorf("%w: negative duration", errors.ErrInvalidPayload)
	}
	session := domain.FocusSession{
		ID:        uuid.New(),
		UserID:    user,
		Duration:  duration,
		StartedAt: s.clock().UTC(),
	}
	if err := s.activities.CreateFocusSession(ctx, session); err != nil {
		return domain.FocusSession{}, err
	}
	return session, nil
}

func (s *ActivityService) CompleteFocusSession(ctx context.Context, user domain.UserID, id uuid.UUID) (domain.FocusSession, error) {
	session, err := s.activities.CompleteFocusSession(ctx, user, id, s.clock().UTC())
	if err != nil {
		return domain.FocusSession{}, err
	}
	s.score(ctx, user, domain.FocusCompletedAction)
	return session, nil
}

func (s *ActivityService) CreateTask(ctx context.Context, user domain.UserID, title string) (domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > maxTaskTitleLength {
		return domain.Task{}, fmt.Errorf("%w: task title must be 1 to %d characters", errors.ErrInvalidPayload, maxTaskTitleLength)
	}
	task := domain.Task{
		ID:        uuid.New(),
		UserID:    user,
		Title:     title,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.activities.CreateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *ActivityService) CompleteTask(ctx context.Context, user domain.UserID, id uuid.UUID) (domain.Task, error) {
	task, err := s.activities.CompleteTask(ctx, user, id, s.clock().UTC())
	if err != nil {
		return domain.Task{}, err
	}
	s.score(ctx, user, domain.TaskCompletedAction)
	return task, nil
}

// BookmarkArticle has no durable side of its own, only the reputation effect.
func (s *ActivityService) BookmarkArticle(ctx context.Context, user domain.UserID, articleID string) error {
	if strings.TrimSpace(articleID) == "" {
		return fmt.Errorf("%w: missing article id", errors.ErrInvalidPayload)
	}
	s.score(ctx, user, domain.ArticleBookmarkAction)
	return nil
}

func (s *ActivityService) GetReputation(ctx context.Context, user domain.UserID) (domain.ReputationRecord, error) {
	return s.reputations.FetchOrCreate(ctx, user, s.clock().UTC())
}

// Leaderboard returns the records ordered by points, highest first.
// A limit of zero or less returns every record.
func (s *ActivityService) Leaderboard(ctx context.Context, limit int) ([]domain.ReputationRecord, error) {
	records, err := s.reputations.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Points != records[j].Points {
			return records[i].Points > records[j].Points
		}
		return records[i].UserID < records[j].UserID
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *ActivityService) score(ctx context.Context, user domain.UserID, action domain.ReputationAction) {
	record, err := s.engine.Apply(ctx, user, action)
	if err != nil {
		s.log.Warn("Reputation update failed", "user_id", user, "action", action.String(), "error", err)
		return
	}
	s.log.Debug("Reputation updated", "user_id", user, "action", action.String(), "points", record.Points)
}
