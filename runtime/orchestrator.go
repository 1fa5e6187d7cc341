// Package runtime wires live connections, room presence and the background
// workers together. Business rules live in domain and reputation.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"pulse-lab/contract"
	"pulse-lab/domain"
	"pulse-lab/domain/event"
	"pulse-lab/runtime/workers"
)

// Orchestrator owns the reputation queue and the supervised workers.
// It implements contract.IReputationDispatcher for the router.
type Orchestrator struct {
	log            *slog.Logger
	supervisor     contract.ISupervisor
	engine         contract.IReputationEngine
	registry       *Registry
	numWorkers     int
	reputationJobs chan domain.ReputationJob
	telemetryChan  chan event.Event
	handlers       []event.Handler
	metricInterval time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	engine contract.IReputationEngine, registry *Registry,
	numWorkers, bufferSize int, telemetryChan chan event.Event,
	handlers []event.Handler, metricInterval time.Duration) *Orchestrator {
	return &Orchestrator{
		log:            log,
		supervisor:     supervisor,
		engine:         engine,
		registry:       registry,
		numWorkers:     numWorkers,
		reputationJobs: make(chan domain.ReputationJob, bufferSize),
		telemetryChan:  telemetryChan,
		handlers:       handlers,
		metricInterval: metricInterval,
	}
}

// Dispatch queues a reputation job without blocking.
// A full queue drops the job, the caller never sees the failure.
func (o *Orchestrator) Dispatch(job domain.ReputationJob) {
	select {
	case o.reputationJobs <- job:
	default:
		o.log.Warn("Reputation queue full, dropping job", "user_id", job.UserID, "action", job.Action.String())
		select {
		case o.telemetryChan <- event.New(event.ReputationJobDroppedType,
			event.ReputationJobDropped{UserID: job.UserID, Action: job.Action}):
		default:
		}
	}
}

// Start registers every worker and blocks until the supervisor stops.
func (o *Orchestrator) Start(ctx context.Context) {
	for i := 0; i < o.numWorkers; i++ {
		o.supervisor.Add(workers.NewReputationWorker(o.log, o.engine, o.reputationJobs, o.telemetryChan))
	}
	o.supervisor.Add(
		workers.NewTelemetryWorker(o.log, o.telemetryChan, o.handlers),
		workers.NewChannelCapacityWorker(o.log, []workers.NamedChannel{
			{Name: "reputation_jobs", Channel: o.reputationJobs},
			{Name: "telemetry", Channel: o.telemetryChan},
		}, o.telemetryChan, o.metricInterval),
		workers.NewHealthWorker(o.log, o.registry, o.telemetryChan, o.metricInterval),
	)

	o.log.Info("Starting orchestrator and all supervised workers", "reputation_workers", o.numWorkers)
	o.supervisor.Run(ctx)
}

// Stop cancels the supervised workers. Queued reputation jobs are drained first.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
