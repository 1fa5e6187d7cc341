package event

import (
	"log/slog"

	"pulse-lab/errors"
)

// FactDroppedHandler reports slow consumers whose outbox stayed full.
type FactDroppedHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewFactDroppedHandler(log *slog.Logger, counter *Counter) *FactDroppedHandler {
	return &FactDroppedHandler{log: log, counter: counter}
}

func (h *FactDroppedHandler) Handle(event Event) {
	switch event.Type {
	case FactDroppedType:
		payload, ok := event.Payload.(FactDropped)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
			return
		}
		h.counter.Increment(FactDroppedType)
		h.log.Warn("Fact dropped for slow connection",
			"conn_id", payload.ConnID,
			"kind", payload.Kind,
			"waited", payload.Wait)
	}
}
