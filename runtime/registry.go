package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pulse-lab/contract"
	"pulse-lab/domain"
	"pulse-lab/domain/event"
	"pulse-lab/sink"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Set map[domain.ConnID]struct{}

// Registry tracks live connections by handle and by user.
type Registry struct {
	mu              sync.RWMutex
	log             *slog.Logger
	verifier        contract.ITokenVerifier
	connections     map[domain.ConnID]*Connection
	byUser          map[domain.UserID]Set
	bufferSize      int
	deliveryTimeout time.Duration
	telemetryChan   chan<- event.Event
}

func NewRegistry(log *slog.Logger, verifier contract.ITokenVerifier,
	bufferSize int, deliveryTimeout time.Duration, telemetryChan chan<- event.Event) *Registry {
	return &Registry{
		log:             log,
		verifier:        verifier,
		connections:     make(map[domain.ConnID]*Connection),
		byUser:          make(map[domain.UserID]Set),
		bufferSize:      bufferSize,
		deliveryTimeout: deliveryTimeout,
		telemetryChan:   telemetryChan,
	}
}

// Register authenticates the handshake token and stores the connection.
// On failure the raw connection is closed and nothing is stored.
func (r *Registry) Register(raw contract.RawConn, token string) (*Connection, error) {
	identity, err := r.verifier.Verify(token)
	if err != nil {
		if closeErr := raw.Close(); closeErr != nil {
			r.log.Debug("Closing rejected connection failed", "error", closeErr)
		}
		return nil, err
	}

	id := domain.ConnID(uuid.NewString())
	conn := &Connection{
		ID:       id,
		Identity: identity,
		raw:      raw,
		sink:     sink.NewConnectionSink(id, r.bufferSize, r.deliveryTimeout, r.telemetryChan),
		rooms:    make(map[domain.RoomID]struct{}),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[id] = conn
	if _, ok := r.byUser[identity.UserID]; !ok {
		r.byUser[identity.UserID] = make(Set)
	}
	r.byUser[identity.UserID][id] = struct{}{}
	r.log.Debug(fmt.Sprintf("Connection %s registered for %s", id, identity.UserID))
	return conn, nil
}

// Unregister removes the connection and returns the rooms it had joined.
// A second call for the same handle returns nothing.
func (r *Registry) Unregister(id domain.ConnID) []domain.RoomID {
	r.mu.Lock()
	conn, ok := r.connections[id]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.connections, id)
	if conns, ok := r.byUser[conn.Identity.UserID]; ok {
		delete(conns, id)
		if len(conns) == 0 {
			delete(r.byUser, conn.Identity.UserID)
		}
	}
	r.mu.Unlock()

	conn.sink.Close()
	return conn.Rooms()
}

func (r *Registry) Get(id domain.ConnID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.connections[id]
	return conn, ok
}

// ConnectionsOf returns every live connection of a user, whatever room they joined.
func (r *Registry) ConnectionsOf(user domain.UserID) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.FilterMap(lo.Keys(r.byUser[user]), func(id domain.ConnID, _ int) (*Connection, bool) {
		conn, ok := r.connections[id]
		return conn, ok
	})
}

func (r *Registry) All() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.connections)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}
