package runtime

import (
	"sync"

	"pulse-lab/domain"

	"github.com/samber/lo"
)

// RoomMembers is the live state of one room: user -> connections joined to it.
// It is only reachable through RoomTable.WithRoom, under the room lock.
type RoomMembers struct {
	mu    sync.Mutex
	refs  int
	users map[domain.UserID]map[domain.ConnID]*Connection
}

// add returns true when conn is the user's first connection in the room.
func (m *RoomMembers) add(conn *Connection) bool {
	user := conn.Identity.UserID
	conns, ok := m.users[user]
	if !ok {
		conns = make(map[domain.ConnID]*Connection)
		m.users[user] = conns
	}
	conns[conn.ID] = conn
	return !ok
}

// remove returns true when conn was the user's last connection in the room.
func (m *RoomMembers) remove(conn *Connection) bool {
	user := conn.Identity.UserID
	conns, ok := m.users[user]
	if !ok {
		return false
	}
	if _, ok = conns[conn.ID]; !ok {
		return false
	}
	delete(conns, conn.ID)
	if len(conns) == 0 {
		delete(m.users, user)
		return true
	}
	return false
}

// OnlineCount is the number of distinct users with at least one joined connection.
func (m *RoomMembers) OnlineCount() int {
	return len(m.users)
}

func (m *RoomMembers) HasUser(user domain.UserID) bool {
	_, ok := m.users[user]
	return ok
}

func (m *RoomMembers) Users() []domain.UserID {
	return lo.Keys(m.users)
}

// Connections returns the connections joined to the room.
func (m *RoomMembers) Connections() []*Connection {
	var res []*Connection
	for _, conns := range m.users {
		res = append(res, lo.Values(conns)...)
	}
	return res
}

// RoomTable holds live membership with one lock per room.
// Empty rooms are dropped once no caller holds or waits on them.
type RoomTable struct {
	mu    sync.Mutex
	rooms map[domain.RoomID]*RoomMembers
}

func NewRoomTable() *RoomTable {
	return &RoomTable{rooms: make(map[domain.RoomID]*RoomMembers)}
}

// WithRoom runs fn while holding the room lock. fn must not call WithRoom.
func (t *RoomTable) WithRoom(id domain.RoomID, fn func(members *RoomMembers)) {
	t.mu.Lock()
	members, ok := t.rooms[id]
	if !ok {
		members = &RoomMembers{users: make(map[domain.UserID]map[domain.ConnID]*Connection)}
		t.rooms[id] = members
	}
	members.refs++
	t.mu.Unlock()

	members.mu.Lock()
	fn(members)
	members.mu.Unlock()

	t.mu.Lock()
	members.refs--
	if members.refs == 0 && len(members.users) == 0 {
		delete(t.rooms, id)
	}
	t.mu.Unlock()
}

// OnlineCount is a snapshot, used by HTTP handlers and tests.
func (t *RoomTable) OnlineCount(id domain.RoomID) int {
	count := 0
	t.WithRoom(id, func(members *RoomMembers) {
		count = members.OnlineCount()
	})
	return count
}

func (t *RoomTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rooms)
}
