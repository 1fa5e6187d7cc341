package workers

import (
	"context"
	"log/slog"

	"pulse-lab/contract"
	"pulse-lab/domain"
	"pulse-lab/domain/event"
)

// ReputationWorker applies queued reputation jobs.
// Jobs run on a context detached from the caller so that a closing
// connection never cancels an update already accepted.
type ReputationWorker struct {
	log           *slog.Logger
	engine        contract.IReputationEngine
	jobs          <-chan domain.ReputationJob
	telemetryChan chan<- event.Event
}

func NewReputationWorker(log *slog.Logger, engine contract.IReputationEngine,
	jobs <-chan domain.ReputationJob, telemetryChan chan<- event.Event) *ReputationWorker {
	return &ReputationWorker{log: log, engine: engine, jobs: jobs, telemetryChan: telemetryChan}
}

func (w *ReputationWorker) Run(ctx context.Context) error {
	detached := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			w.drain(detached)
			return nil
		case job, ok := <-w.jobs:
			if !ok {
				return nil
			}
			w.apply(detached, job)
		}
	}
}

// drain applies what is still queued at shutdown.
func (w *ReputationWorker) drain(ctx context.Context) {
	for {
		select {
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			w.apply(ctx, job)
		default:
			return
		}
	}
}

func (w *ReputationWorker) apply(ctx context.Context, job domain.ReputationJob) {
	record, err := w.engine.Apply(ctx, job.UserID, job.Action)
	if err != nil {
		w.log.Warn("Reputation update failed", "user_id", job.UserID, "action", job.Action.String(), "error", err)
		select {
		case w.telemetryChan <- event.New(event.ReputationUpdateFailedType, event.ReputationUpdateFailed{
			UserID: job.UserID,
			Action: job.Action,
			Reason: err.Error(),
		}):
		default:
		}
		return
	}
	w.log.Debug("Reputation updated", "user_id", job.UserID, "points", record.Points, "level", record.Level)
}
