package protocol

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"pulse-lab/domain"
	"pulse-lab/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCodec_Decode_Known_Commands(t *testing.T) {
	req := require.New(t)
	codec := NewCodec(100)

	cases := map[string]domain.Command{
		`{"type":"join_room","payload":{"roomId":"r1"}}`:                    domain.JoinRoomCommand{Room: "r1"},
		`{"type":"leave_room","payload":{"roomId":"r1"}}`:                   domain.LeaveRoomCommand{Room: "r1"},
		`{"type":"send_message","payload":{"roomId":"r1","content":"hey"}}`: domain.SendMessageCommand{Room: "r1", Content: "hey"},
		`{"type":"typing_start","payload":{"roomId":"r1"}}`:                 domain.TypingStartCommand{Room: "r1"},
		`{"type":"typing_stop","payload":{"roomId":"r1"}}`:                  domain.TypingStopCommand{Room: "r1"},
		`{"type":"mark_read","payload":{"roomId":"r1"}}`:                    domain.MarkReadCommand{Room: "r1"},
		`{"type":"focus_started","payload":{"duration":25}}`:                domain.FocusStartedCommand{Duration: 25},
		`{"type":"focus_completed"}`:                                        domain.FocusCompletedCommand{},
	}
	for frame, expected := range cases {
		cmd, err := codec.Decode([]byte(frame))
		req.NoError(err, frame)
		req.Equal(expected, cmd, frame)
	}
}

func TestCodec_Decode_Rejects(t *testing.T) {
	req := require.New(t)
	codec := NewCodec(5)

	// Unknown kind
	_, err := codec.Decode([]byte(`{"type":"delete_room","payload":{"roomId":"r1"}}`))
	req.ErrorIs(err, errors.ErrUnknownEvent)

	// Not JSON
	_, err = codec.Decode([]byte(`hello`))
	req.ErrorIs(err, errors.ErrInvalidPayload)

	// Missing room
	_, err = codec.Decode([]byte(`{"type":"join_room","payload":{}}`))
	req.ErrorIs(err, errors.ErrInvalidPayload)

	// Empty content
	_, err = codec.Decode([]byte(`{"type":"send_message","payload":{"roomId":"r1","content":""}}`))
	req.ErrorIs(err, errors.ErrInvalidPayload)

	// Content too long
	_, err = codec.Decode([]byte(`{"type":"send_message","payload":{"roomId":"r1","content":"` + strings.Repeat("é", 6) + `"}}`))
	req.ErrorIs(err, errors.ErrInvalidPayload)

	// Negative duration
	_, err = codec.Decode([]byte(`{"type":"focus_started","payload":{"duration":-1}}`))
	req.ErrorIs(err, errors.ErrInvalidPayload)
}

func TestCodec_Encode_Fact(t *testing.T) {
	req := require.New(t)
	codec := NewCodec(0)
	id := uuid.New()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	fact := domain.NewMessagePosted(domain.Message{
		ID: id, RoomID: "r1", SenderID: "u1", Content: "hi", CreatedAt: at,
		Sender: domain.Profile{UserID: "u1", DisplayName: "Alice"},
	})

	data, err := codec.Encode(fact)
	req.NoError(err)

	var envelope struct {
		Type    string         `json:"type"`
		RoomID  string         `json:"room_id"`
		Payload map[string]any `json:"payload"`
	}
	req.NoError(json.Unmarshal(data, &envelope))
	req.Equal("new_message", envelope.Type)
	req.Equal("r1", envelope.RoomID)
	req.Equal(id.String(), envelope.Payload["id"])
	req.Equal("u1", envelope.Payload["senderId"])
	req.Equal("Alice", envelope.Payload["sender"].(map[string]any)["displayName"])
}

func TestEncodeCommand_Is_Decodable(t *testing.T) {
	req := require.New(t)
	data, err := EncodeCommand(domain.SendMessageCommand{Room: "r1", Content: "hello"})
	req.NoError(err)

	cmd, err := NewCodec(0).Decode(data)
	req.NoError(err)
	req.Equal(domain.SendMessageCommand{Room: "r1", Content: "hello"}, cmd)
}
