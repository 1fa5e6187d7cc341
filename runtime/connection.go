package runtime

import (
	"context"
	"slices"
	"sync"

	"pulse-lab/contract"
	"pulse-lab/domain"
	"pulse-lab/sink"
)

// Connection is a registered, authenticated transport handle.
// Its room set only changes through the broadcaster's Joined and Left.
type Connection struct {
	ID       domain.ConnID
	Identity domain.Identity
	raw      contract.RawConn
	sink     *sink.ConnectionSink

	mu    sync.Mutex
	rooms map[domain.RoomID]struct{}
}

// Outbox is drained by the transport writer, it is closed on Unregister.
func (c *Connection) Outbox() <-chan domain.Fact {
	return c.sink.Outbox()
}

func (c *Connection) Send(ctx context.Context, fact domain.Fact) error {
	return c.sink.Consume(ctx, fact)
}

func (c *Connection) Rooms() []domain.RoomID {
	c.mu.Lock()
	defer c.mu.Unlock()
	rooms := make([]domain.RoomID, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	slices.Sort(rooms)
	return rooms
}

func (c *Connection) InRoom(room domain.RoomID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rooms[room]
	return ok
}

// addRoom returns false when the room was already joined.
func (c *Connection) addRoom(room domain.RoomID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.rooms[room]; ok {
		return false
	}
	c.rooms[room] = struct{}{}
	return true
}

// removeRoom returns false when the room was not joined.
func (c *Connection) removeRoom(room domain.RoomID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.rooms[room]; !ok {
		return false
	}
	delete(c.rooms, room)
	return true
}
