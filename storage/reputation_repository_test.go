package storage

import (
	"context"
	"testing"
	"time"

	"pulse-lab/domain"

	"github.com/stretchr/testify/require"
)

func TestReputationRepository_FetchOrCreate_Lazy(t *testing.T) {
	req := require.New(t)
	repository := NewReputationRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	// Given no record
	record, err := repository.FetchOrCreate(ctx, "alice", now)

	// Then a fresh one is returned but not stored
	req.NoError(err)
	req.Equal(domain.UserID("alice"), record.UserID)
	req.Zero(record.Points)
	req.Equal(domain.Explorer, record.Level)
	records, err := repository.List(ctx)
	req.NoError(err)
	req.Empty(records)
}

func TestReputationRepository_Save_Round_Trip(t *testing.T) {
	req := require.New(t)
	repository := NewReputationRepository(newTestDB(t))
	ctx := context.Background()
	lastFocus := time.Date(2026, 6, 1, 7, 30, 0, 0, time.UTC)
	record := domain.ReputationRecord{
		UserID:      "alice",
		Points:      612,
		Level:       domain.Builder,
		FocusStreak: 8,
		LastFocusAt: &lastFocus,
		Badges:      []domain.Badge{domain.EarlyAdopterBadge, domain.FocusedBadge},
		UpdatedAt:   lastFocus,
	}

	req.NoError(repository.Save(ctx, record))
	fetched, err := repository.FetchOrCreate(ctx, "alice", time.Now())

	req.NoError(err)
	req.Equal(612, fetched.Points)
	req.Equal(domain.Builder, fetched.Level)
	req.Equal(8, fetched.FocusStreak)
	req.True(lastFocus.Equal(*fetched.LastFocusAt))
	req.Equal(record.Badges, fetched.Badges)

	records, err := repository.List(ctx)
	req.NoError(err)
	req.Len(records, 1)
}
