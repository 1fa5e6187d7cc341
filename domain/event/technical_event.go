package event

import (
	"time"

	"pulse-lab/domain"
)

const (
	RestartedAfterPanicType    Type = "WORKER_RESTARTED_AFTER_PANIC"
	ChannelCapacityType        Type = "CHANNEL_CAPACITY"
	ProcessStatsType           Type = "PROCESS_STATS"
	ReputationUpdateFailedType Type = "REPUTATION_UPDATE_FAILED"
	ReputationJobDroppedType   Type = "REPUTATION_JOB_DROPPED"
	FactDroppedType            Type = "FACT_DROPPED"
)

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

type ProcessStats struct {
	PID         int32
	Cpu         float64
	Ram         uint64
	Connections int
}

type ReputationUpdateFailed struct {
	UserID domain.UserID
	Action domain.ReputationAction
	Reason string
}

type ReputationJobDropped struct {
	UserID domain.UserID
	Action domain.ReputationAction
}

type FactDropped struct {
	ConnID domain.ConnID
	Kind   domain.FactKind
	Wait   time.Duration
}
