package sink

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"pulse-lab/domain"
	"pulse-lab/domain/event"
	"pulse-lab/errors"
)

// ConnectionSink buffers the facts addressed to one live connection.
// The transport writer drains Outbox; fanout calls Consume.
type ConnectionSink struct {
	mu              sync.RWMutex
	closed          bool
	stalled         atomic.Bool
	connID          domain.ConnID
	outbox          chan domain.Fact
	deliveryTimeout time.Duration
	telemetryChan   chan<- event.Event
}

func NewConnectionSink(connID domain.ConnID, bufferSize int,
	deliveryTimeout time.Duration, telemetryChan chan<- event.Event) *ConnectionSink {
	return &ConnectionSink{
		connID:          connID,
		outbox:          make(chan domain.Fact, bufferSize),
		deliveryTimeout: deliveryTimeout,
		telemetryChan:   telemetryChan,
	}
}

// Outbox is closed once the sink is closed and drained.
func (s *ConnectionSink) Outbox() <-chan domain.Fact {
	return s.outbox
}

// Consume enqueues a fact, waiting at most deliveryTimeout for room in the buffer.
// A fact that cannot be enqueued in time is dropped and reported. After such a
// drop the sink is stalled: later facts are dropped without waiting until the
// writer frees a slot, so one slow peer never holds the room lock for long.
func (s *ConnectionSink) Consume(ctx context.Context, fact domain.Fact) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.ErrConnectionClosed
	}

	select {
	case s.outbox <- fact:
		s.stalled.Store(false)
		return nil
	default:
	}
	if s.stalled.Load() {
		s.reportDrop(fact, 0)
		return nil
	}

	timer := time.NewTimer(s.deliveryTimeout)
	defer timer.Stop()
	select {
	case s.outbox <- fact:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		s.stalled.Store(true)
		s.reportDrop(fact, s.deliveryTimeout)
		return nil
	}
}

// Stalled reports whether the last delivery attempt timed out.
func (s *ConnectionSink) Stalled() bool {
	return s.stalled.Load()
}

func (s *ConnectionSink) reportDrop(fact domain.Fact, wait time.Duration) {
	if s.telemetryChan == nil {
		return
	}
	select {
	case s.telemetryChan <- event.New(event.FactDroppedType, event.FactDropped{
		ConnID: s.connID, Kind: fact.Kind, Wait: wait,
	}):
	default:
	}
}

// Close is idempotent.
func (s *ConnectionSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.outbox)
}
