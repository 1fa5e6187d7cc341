package runtime

import (
	"context"
	"log/slog"
	"time"

	"pulse-lab/domain"
	"pulse-lab/errors"
)

// Broadcaster owns every change to live membership and emits the presence
// facts that follow it while still holding the room lock. Recipients of a
// room therefore see facts in generation order and room_stats never lags
// behind the join or leave that produced it.
type Broadcaster struct {
	log      *slog.Logger
	table    *RoomTable
	registry *Registry
	clock    func() time.Time
}

func NewBroadcaster(log *slog.Logger, table *RoomTable, registry *Registry) *Broadcaster {
	return &Broadcaster{log: log, table: table, registry: registry, clock: time.Now}
}

// Joined adds conn to the room. It returns false when conn had already joined.
// user_joined is only emitted when the user was not live in the room yet.
func (b *Broadcaster) Joined(ctx context.Context, conn *Connection, room domain.RoomID) bool {
	joined := false
	b.table.WithRoom(room, func(members *RoomMembers) {
		if !conn.addRoom(room) {
			return
		}
		joined = true
		if members.add(conn) {
			b.fanout(ctx, members.Connections(), domain.UserJoined(room, conn.Identity, b.clock().UTC()))
		}
		b.fanout(ctx, members.Connections(), domain.RoomStats(room, members.OnlineCount()))
	})
	return joined
}

// Left removes conn from the room. It returns false when conn was not in it.
// user_left and room_stats are only emitted when the user's last connection leaves.
func (b *Broadcaster) Left(ctx context.Context, conn *Connection, room domain.RoomID) bool {
	left := false
	b.table.WithRoom(room, func(members *RoomMembers) {
		if !conn.removeRoom(room) {
			return
		}
		left = true
		if members.remove(conn) {
			remaining := members.Connections()
			b.fanout(ctx, remaining, domain.UserLeft(room, conn.Identity, b.clock().UTC()))
			b.fanout(ctx, remaining, domain.RoomStats(room, members.OnlineCount()))
		}
	})
	return left
}

// IsLive reports whether the user has at least one connection joined to the room.
func (b *Broadcaster) IsLive(room domain.RoomID, user domain.UserID) bool {
	live := false
	b.table.WithRoom(room, func(members *RoomMembers) {
		live = members.HasUser(user)
	})
	return live
}

// Notify fans a fact out to every connection joined to the room.
func (b *Broadcaster) Notify(ctx context.Context, room domain.RoomID, fact domain.Fact) {
	b.table.WithRoom(room, func(members *RoomMembers) {
		b.fanout(ctx, members.Connections(), fact)
	})
}

// NotifyMembers sends a fact to every live connection of the users present in
// the room, except those of the excluded user (empty excludes nobody).
func (b *Broadcaster) NotifyMembers(ctx context.Context, room domain.RoomID, fact domain.Fact, exclude domain.UserID) {
	b.table.WithRoom(room, func(members *RoomMembers) {
		for _, user := range members.Users() {
			if user == exclude {
				continue
			}
			b.fanout(ctx, b.registry.ConnectionsOf(user), fact)
		}
	})
}

// NotifyAll sends a fact that is not room-scoped to every registered connection.
func (b *Broadcaster) NotifyAll(ctx context.Context, fact domain.Fact) {
	b.fanout(ctx, b.registry.All(), fact)
}

func (b *Broadcaster) fanout(ctx context.Context, conns []*Connection, fact domain.Fact) {
	for _, conn := range conns {
		if err := conn.Send(ctx, fact); err != nil && !errors.Is(err, errors.ErrConnectionClosed) {
			b.log.Debug("Fact not delivered", "conn_id", conn.ID, "kind", fact.Kind, "error", err)
		}
	}
}
