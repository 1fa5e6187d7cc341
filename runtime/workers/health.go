package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"pulse-lab/domain/event"

	"github.com/shirou/gopsutil/process"
)

type ConnectionCounter interface {
	Count() int
}

// HealthWorker periodically reports CPU, resident memory and live connections
// of the current process.
type HealthWorker struct {
	log            *slog.Logger
	counter        ConnectionCounter
	telemetryChan  chan<- event.Event
	metricInterval time.Duration
}

func NewHealthWorker(log *slog.Logger, counter ConnectionCounter,
	telemetryChan chan<- event.Event, metricInterval time.Duration) *HealthWorker {
	return &HealthWorker{
		log:            log,
		counter:        counter,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
	}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health sampling")
			return nil
		case <-ticker.C:
			stats, err := w.sample(p)
			if err != nil {
				w.log.Error("Error while sampling process stats", "error", err)
				continue
			}
			select {
			case w.telemetryChan <- event.New(event.ProcessStatsType, stats):
			default:
				w.log.Debug("Telemetry channel full, process stats lost")
			}
		}
	}
}

func (w *HealthWorker) sample(p *process.Process) (event.ProcessStats, error) {
	cpu, err := p.CPUPercent()
	if err != nil {
		return event.ProcessStats{}, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return event.ProcessStats{}, err
	}
	return event.ProcessStats{
		PID:         p.Pid,
		Cpu:         cpu,
		Ram:         mem.RSS,
		Connections: w.counter.Count(),
	}, nil
}
