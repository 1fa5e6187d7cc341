package event

import (
	"fmt"
	"log/slog"

	"pulse-lab/errors"
)

type ProcessStatsHandler struct {
	log *slog.Logger
}

func NewProcessStatsHandler(log *slog.Logger) *ProcessStatsHandler {
	return &ProcessStatsHandler{log: log}
}

func (h ProcessStatsHandler) Handle(event Event) {
	switch event.Type {
	case ProcessStatsType:
		payload, ok := event.Payload.(ProcessStats)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
			return
		}
		h.log.Debug(fmt.Sprintf("PID %d | CPU %.2f%% | RAM %d bytes | %d connections",
			payload.PID, payload.Cpu, payload.Ram, payload.Connections))
	}
}
