package runtime

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"pulse-lab/domain"
	"pulse-lab/domain/event"
	"pulse-lab/errors"

	"github.com/stretchr/testify/require"
)

// stubVerifier accepts any non empty token as the user id.
type stubVerifier struct{}

func (stubVerifier) Verify(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, fmt.Errorf("%w: empty token", errors.ErrAuth)
	}
	return domain.Identity{UserID: domain.UserID(token), DisplayName: "User " + token}, nil
}

type rawConn struct {
	closed atomic.Bool
}

func (c *rawConn) Close() error {
	c.closed.Store(true)
	return nil
}

func newTestRegistry() *Registry {
	return NewRegistry(slog.Default(), stubVerifier{}, 32, 50*time.Millisecond, make(chan event.Event, 32))
}

func connect(t *testing.T, registry *Registry, user string) *Connection {
	conn, err := registry.Register(&rawConn{}, user)
	require.NoError(t, err)
	return conn
}

// drain returns every fact already queued for the connection.
func drain(conn *Connection) []domain.Fact {
	var facts []domain.Fact
	for {
		select {
		case fact, ok := <-conn.Outbox():
			if !ok {
				return facts
			}
			facts = append(facts, fact)
		default:
			return facts
		}
	}
}

func kinds(facts []domain.Fact) []domain.FactKind {
	res := make([]domain.FactKind, 0, len(facts))
	for _, f := range facts {
		res = append(res, f.Kind)
	}
	return res
}
