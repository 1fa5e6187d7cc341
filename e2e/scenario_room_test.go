package e2e

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"pulse-lab/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type roomScenarioSuite struct {
	BaseSuite
}

func TestRoomScenarioSuite(t *testing.T) {
	suite.Run(t, &roomScenarioSuite{})
}

type room struct {
	ID   domain.RoomID `json:"id"`
	Name string        `json:"name"`
}

type reputation struct {
	Points int `json:"points"`
}

func (s *roomScenarioSuite) TestChat_Presence_And_Reputation() {
	suffix := uuid.NewString()[:8]
	alice := s.Token("alice-"+suffix, "Alice")
	bob := s.Token("bob-"+suffix, "Bob")

	var created room
	s.Run("Step 1: Create a room over REST", func() {
		s.Step("POST /api/v1/rooms")
		status := s.Call(http.MethodPost, "/api/v1/rooms", alice, map[string]string{"name": "e2e-" + suffix}, &created)
		s.Require().Equal(http.StatusCreated, status)
		s.Require().NotEmpty(created.ID)
	})

	aliceConn := s.Dial(alice)
	bobConn := s.Dial(bob)

	s.Run("Step 2: Both users join and see each other", func() {
		s.Step("join_room")
		s.Send(aliceConn, domain.JoinRoomCommand{Room: created.ID})
		s.Expect(aliceConn, domain.RoomStatsKind)
		s.Send(bobConn, domain.JoinRoomCommand{Room: created.ID})

		joined := s.Expect(aliceConn, domain.UserJoinedKind)
		var presence domain.PresencePayload
		s.Require().NoError(json.Unmarshal(joined.Payload, &presence))
		s.Require().Equal("Bob", presence.DisplayName)

		stats := s.Expect(aliceConn, domain.RoomStatsKind)
		var payload domain.RoomStatsPayload
		s.Require().NoError(json.Unmarshal(stats.Payload, &payload))
		s.Require().Equal(2, payload.OnlineCount)
	})

	s.Run("Step 3: A message reaches both members", func() {
		s.Step("send_message")
		s.Send(bobConn, domain.SendMessageCommand{Room: created.ID, Content: "hello from e2e"})
		received := s.Expect(aliceConn, domain.NewMessageKind)
		var message domain.NewMessagePayload
		s.Require().NoError(json.Unmarshal(received.Payload, &message))
		s.Require().Equal("hello from e2e", message.Content)
		s.Expect(bobConn, domain.NewMessageKind)
	})

	s.Run("Step 4: The sender earns reputation", func() {
		s.Step("GET /api/v1/reputation/me")
		s.Eventually(func() bool {
			var record reputation
			status := s.Call(http.MethodGet, "/api/v1/reputation/me", bob, nil, &record)
			return status == http.StatusOK && record.Points >= 1
		}, 5*time.Second, 100*time.Millisecond, "reputation not updated")
	})

	s.Run("Step 5: Leaving notifies the remaining member", func() {
		s.Step("leave_room")
		s.Send(bobConn, domain.LeaveRoomCommand{Room: created.ID})
		s.Expect(aliceConn, domain.UserLeftKind)
	})
}
