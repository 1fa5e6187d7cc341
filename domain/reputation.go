package domain

import (
	"fmt"
	"slices"
	"time"

	"pulse-lab/errors"
)

// ReputationAction is a closed set of events that transform a reputation record.
type ReputationAction int

const (
	FocusCompletedAction ReputationAction = iota + 1
	TaskCompletedAction
	ChatMessageAction
	ArticleBookmarkAction
)

var actionNames = map[ReputationAction]string{
	FocusCompletedAction:  "focus_completed",
	TaskCompletedAction:   "task_completed",
	ChatMessageAction:     "chat_message",
	ArticleBookmarkAction: "article_bookmark",
}

var actionPoints = map[ReputationAction]int{
	FocusCompletedAction:  10,
	TaskCompletedAction:   5,
	ChatMessageAction:     1,
	ArticleBookmarkAction: 2,
}

func (a ReputationAction) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Points returns the delta granted by the action, or an error for a value outside the enum.
func (a ReputationAction) Points() (int, error) {
	points, ok := actionPoints[a]
	if !ok {
		return 0, fmt.Errorf("%w: %d", errors.ErrUnknownAction, int(a))
	}
	return points, nil
}

func ParseReputationAction(s string) (ReputationAction, error) {
	for action, name := range actionNames {
		if name == s {
			return action, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", errors.ErrUnknownAction, s)
}

type Level string

const (
	Explorer     Level = "Explorer"
	Builder      Level = "Builder"
	Architect    Level = "Architect"
	SystemMaster Level = "System Master"
)

// levelThresholds is ascending, each entry is the inclusive lower bound.
var levelThresholds = []struct {
	min   int
	level Level
}{
	{0, Explorer},
	{501, Builder},
	{1001, Architect},
	{2001, SystemMaster},
}

func LevelFor(points int) Level {
	level := Explorer
	for _, t := range levelThresholds {
		if points >= t.min {
			level = t.level
		}
	}
	return level
}

type Badge string

const (
	EarlyAdopterBadge Badge = "Early Adopter"
	FocusedBadge      Badge = "Focused"

	earlyAdopterPoints = 100
	focusedStreakDays  = 7
)

type ReputationRecord struct {
	UserID      UserID
	Points      int
	Level       Level
	FocusStreak int
	LastFocusAt *time.Time
	Badges      []Badge
	UpdatedAt   time.Time
}

func NewReputationRecord(user UserID, now time.Time) ReputationRecord {
	return ReputationRecord{UserID: user, Level: Explorer, UpdatedAt: now}
}

func (r ReputationRecord) HasBadge(b Badge) bool {
	return slices.Contains(r.Badges, b)
}

// ApplyAction is the pure transition of a record for one action at instant now.
// The input record is never modified.
func ApplyAction(record ReputationRecord, action ReputationAction, now time.Time) (ReputationRecord, error) {
	delta, err := action.Points()
	if err != nil {
		return record, err
	}

	next := record
	next.Badges = slices.Clone(record.Badges)
	next.Points = record.Points + delta

	if action == FocusCompletedAction {
		next.FocusStreak = nextStreak(record, now)
		at := now
		next.LastFocusAt = &at
	}

	next.Level = LevelFor(next.Points)

	if next.Points >= earlyAdopterPoints && !next.HasBadge(EarlyAdopterBadge) {
		next.Badges = append(next.Badges, EarlyAdopterBadge)
	}
	if next.FocusStreak >= focusedStreakDays && !next.HasBadge(FocusedBadge) {
		next.Badges = append(next.Badges, FocusedBadge)
	}
	next.UpdatedAt = now
	return next, nil
}

// nextStreak compares calendar days in the location of now.
func nextStreak(record ReputationRecord, now time.Time) int {
	if record.LastFocusAt == nil {
		return 1
	}
	today := calendarDay(now, now.Location())
	last := calendarDay(*record.LastFocusAt, now.Location())
	switch {
	case last.Equal(today):
		return record.FocusStreak
	case last.Equal(today.AddDate(0, 0, -1)):
		return record.FocusStreak + 1
	default:
		return 1
	}
}

func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
