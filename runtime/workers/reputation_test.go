package workers

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"pulse-lab/domain"
	"pulse-lab/domain/event"
	"pulse-lab/errors"
	"pulse-lab/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestReputationWorker_Applies_Jobs(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockIReputationEngine(ctrl)
	jobs := make(chan domain.ReputationJob, 4)
	telemetryChan := make(chan event.Event, 4)

	applied := make(chan struct{})
	engine.EXPECT().
		Apply(gomock.Any(), domain.UserID("alice"), domain.ChatMessageAction).
		DoAndReturn(func(ctx context.Context, user domain.UserID, action domain.ReputationAction) (domain.ReputationRecord, error) {
			close(applied)
			return domain.ReputationRecord{UserID: user, Points: 1}, nil
		})

	worker := NewReputationWorker(slog.Default(), engine, jobs, telemetryChan)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	// When a chat message job is queued
	jobs <- domain.ReputationJob{UserID: "alice", Action: domain.ChatMessageAction}

	// Then the engine applies it
	select {
	case <-applied:
	case <-time.After(time.Second):
		req.Fail("job was not applied")
	}
	req.Empty(telemetryChan)
}

func TestReputationWorker_Failure_Is_Reported_Not_Raised(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockIReputationEngine(ctrl)
	jobs := make(chan domain.ReputationJob, 4)
	telemetryChan := make(chan event.Event, 4)

	engine.EXPECT().
		Apply(gomock.Any(), domain.UserID("bob"), domain.TaskCompletedAction).
		Return(domain.ReputationRecord{}, fmt.Errorf("%w: %w", errors.ErrReputationUpdate, errors.ErrTransient))

	worker := NewReputationWorker(slog.Default(), engine, jobs, telemetryChan)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- worker.Run(ctx) }()

	jobs <- domain.ReputationJob{UserID: "bob", Action: domain.TaskCompletedAction}

	select {
	case evt := <-telemetryChan:
		req.Equal(event.ReputationUpdateFailedType, evt.Type)
		payload := evt.Payload.(event.ReputationUpdateFailed)
		req.Equal(domain.UserID("bob"), payload.UserID)
		req.Contains(payload.Reason, "transient")
	case <-time.After(time.Second):
		req.Fail("failure was not reported")
	}

	// Then the worker keeps running until cancelled
	cancel()
	req.NoError(<-done)
}

func TestReputationWorker_Drains_Queue_On_Shutdown(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockIReputationEngine(ctrl)
	jobs := make(chan domain.ReputationJob, 4)

	// Given jobs queued before the worker starts, on an already cancelled context
	jobs <- domain.ReputationJob{UserID: "alice", Action: domain.ChatMessageAction}
	jobs <- domain.ReputationJob{UserID: "alice", Action: domain.ArticleBookmarkAction}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Then they are still applied, on a context that is not cancelled
	engine.EXPECT().
		Apply(gomock.Any(), domain.UserID("alice"), gomock.Any()).
		DoAndReturn(func(ctx context.Context, user domain.UserID, action domain.ReputationAction) (domain.ReputationRecord, error) {
			req.NoError(ctx.Err())
			return domain.ReputationRecord{UserID: user}, nil
		}).
		Times(2)

	worker := NewReputationWorker(slog.Default(), engine, jobs, make(chan event.Event, 1))
	req.NoError(worker.Run(ctx))
	req.Empty(jobs)
}
