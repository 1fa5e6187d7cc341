package event

import (
	"log/slog"

	"pulse-lab/errors"
)

// ReputationHandler is the logging sink for gamification failures.
// Those failures are never surfaced to users, this is where they end up.
type ReputationHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewReputationHandler(log *slog.Logger, counter *Counter) *ReputationHandler {
	return &ReputationHandler{log: log, counter: counter}
}

func (h *ReputationHandler) Handle(event Event) {
	switch event.Type {
	case ReputationUpdateFailedType:
		payload, ok := event.Payload.(ReputationUpdateFailed)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
			return
		}
		h.counter.Increment(ReputationUpdateFailedType)
		h.log.Error("Reputation update failed",
			"user_id", payload.UserID,
			"action", payload.Action.String(),
			"error", payload.Reason,
			"total", h.counter.Get(ReputationUpdateFailedType))
	case ReputationJobDroppedType:
		payload, ok := event.Payload.(ReputationJobDropped)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
			return
		}
		h.counter.Increment(ReputationJobDroppedType)
		h.log.Warn("Reputation job dropped",
			"user_id", payload.UserID,
			"action", payload.Action.String(),
			"total", h.counter.Get(ReputationJobDroppedType))
	}
}
