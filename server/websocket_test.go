package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"testing"
	"time"

	"pulse-lab/domain"
	"pulse-lab/protocol"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type websocketSuite struct {
	suite.Suite
	stack *stack
	addr  string
	room  domain.Room
}

func TestWebsocketSuite(t *testing.T) {
	suite.Run(t, &websocketSuite{})
}

func (s *websocketSuite) SetupTest() {
	s.stack = newStack(s.T())
	s.addr = s.stack.listen(s.T())
	room, err := s.stack.rooms.CreateRoom(context.Background(), "general")
	s.Require().NoError(err)
	s.room = room
	s.Require().NoError(s.stack.profiles.SaveProfile(context.Background(), domain.Profile{
		UserID: "alice", DisplayName: "Alice Liddell", AvatarURL: "https://avatars/alice.png",
	}))
}

func (s *websocketSuite) dial(token string) *websocket.Conn {
	u := url.URL{Scheme: "ws", Host: s.addr, Path: "/ws", RawQuery: "token=" + url.QueryEscape(token)}
	var conn *websocket.Conn
	var err error
	// The listener starts asynchronously
	s.Require().Eventually(func() bool {
		conn, _, err = websocket.DefaultDialer.Dial(u.String(), nil)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *websocketSuite) send(conn *websocket.Conn, cmd domain.Command) {
	data, err := protocol.EncodeCommand(cmd)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, data))
}

// expect reads frames until one of the given type arrives.
func (s *websocketSuite) expect(conn *websocket.Conn, kind domain.FactKind) protocol.Envelope {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		s.Require().NoError(err, "waiting for %s", kind)
		var envelope protocol.Envelope
		s.Require().NoError(json.Unmarshal(data, &envelope))
		if envelope.Type == string(kind) {
			return envelope
		}
	}
}

func (s *websocketSuite) TestPresence_Chat_And_Reputation() {
	alice := s.dial(s.stack.token(s.T(), "alice", "Alice"))
	bob := s.dial(s.stack.token(s.T(), "bob", "Bob"))

	// Given both users joined the room
	s.send(alice, domain.JoinRoomCommand{Room: s.room.ID})
	s.expect(alice, domain.RoomStatsKind)
	s.send(bob, domain.JoinRoomCommand{Room: s.room.ID})

	joined := s.expect(alice, domain.UserJoinedKind)
	var presence domain.PresencePayload
	s.Require().NoError(json.Unmarshal(joined.Payload, &presence))
	s.Equal(domain.UserID("bob"), presence.UserID)
	s.Equal(s.room.ID, joined.RoomID)

	stats := s.expect(alice, domain.RoomStatsKind)
	var count domain.RoomStatsPayload
	s.Require().NoError(json.Unmarshal(stats.Payload, &count))
	s.Equal(2, count.OnlineCount)

	// When alice sends a message
	s.send(alice, domain.SendMessageCommand{Room: s.room.ID, Content: "hello bob"})

	// Then bob receives it with alice's stored profile
	posted := s.expect(bob, domain.NewMessageKind)
	var message domain.NewMessagePayload
	s.Require().NoError(json.Unmarshal(posted.Payload, &message))
	s.Equal("hello bob", message.Content)
	s.Equal("Alice Liddell", message.Sender.DisplayName)
	s.Equal("https://avatars/alice.png", message.Sender.AvatarURL)

	// And the chat reputation is applied in the background
	s.Eventually(func() bool {
		record, err := s.stack.reputations.FetchOrCreate(context.Background(), "alice", time.Now())
		return err == nil && record.Points == 1
	}, 2*time.Second, 20*time.Millisecond)

	// When bob closes his connection, alice sees him leave
	s.Require().NoError(bob.Close())
	left := s.expect(alice, domain.UserLeftKind)
	s.Require().NoError(json.Unmarshal(left.Payload, &presence))
	s.Equal(domain.UserID("bob"), presence.UserID)
}

func (s *websocketSuite) TestErrors_Stay_With_The_Sender() {
	alice := s.dial(s.stack.token(s.T(), "alice", "Alice"))

	// Sending to a room not joined
	s.send(alice, domain.SendMessageCommand{Room: s.room.ID, Content: "hi"})
	failure := s.expect(alice, domain.ErrorKind)
	var payload domain.ErrorPayload
	s.Require().NoError(json.Unmarshal(failure.Payload, &payload))
	s.Contains(payload.Message, "not a member")

	// Joining an unknown room
	s.send(alice, domain.JoinRoomCommand{Room: "nowhere"})
	failure = s.expect(alice, domain.ErrorKind)
	s.Require().NoError(json.Unmarshal(failure.Payload, &payload))
	s.Contains(payload.Message, "room not found")

	// Garbage frame, the connection stays usable
	s.Require().NoError(alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`)))
	failure = s.expect(alice, domain.ErrorKind)
	s.Require().NoError(json.Unmarshal(failure.Payload, &payload))
	s.Contains(payload.Message, "unknown event kind")

	s.send(alice, domain.JoinRoomCommand{Room: s.room.ID})
	s.expect(alice, domain.UserJoinedKind)
}

func (s *websocketSuite) TestHandshake_With_Bad_Token_Is_Closed() {
	u := fmt.Sprintf("ws://%s/ws?token=forged", s.addr)
	var conn *websocket.Conn
	s.Require().Eventually(func() bool {
		var err error
		conn, _, err = websocket.DefaultDialer.Dial(u, nil)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	defer conn.Close()

	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, _, err := conn.ReadMessage()
	s.Error(err)
	s.Zero(s.stack.registry.Count())
}
