// Package protocol maps the JSON frames exchanged over the websocket
// to inbound commands and outbound facts.
package protocol

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"pulse-lab/domain"
	"pulse-lab/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Envelope is the frame format in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	RoomID  domain.RoomID   `json:"room_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var commandFactories = map[string]func() domain.Command{
	domain.JoinRoomCommand{}.Kind():       func() domain.Command { return &domain.JoinRoomCommand{} },
	domain.LeaveRoomCommand{}.Kind():      func() domain.Command { return &domain.LeaveRoomCommand{} },
	domain.SendMessageCommand{}.Kind():    func() domain.Command { return &domain.SendMessageCommand{} },
	domain.TypingStartCommand{}.Kind():    func() domain.Command { return &domain.TypingStartCommand{} },
	domain.TypingStopCommand{}.Kind():     func() domain.Command { return &domain.TypingStopCommand{} },
	domain.MarkReadCommand{}.Kind():       func() domain.Command { return &domain.MarkReadCommand{} },
	domain.FocusStartedCommand{}.Kind():   func() domain.Command { return &domain.FocusStartedCommand{} },
	domain.FocusCompletedCommand{}.Kind(): func() domain.Command { return &domain.FocusCompletedCommand{} },
}

type Codec struct {
	maxContentLength int
}

func NewCodec(maxContentLength int) *Codec {
	return &Codec{maxContentLength: maxContentLength}
}

// Decode turns a raw frame into a validated command value (never a pointer).
func (c *Codec) Decode(data []byte) (domain.Command, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	factory, ok := commandFactories[envelope.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, envelope.Type)
	}
	cmd := factory()
	if len(envelope.Payload) > 0 {
		if err := json.Unmarshal(envelope.Payload, cmd); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
		}
	}
	if err := validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if send, ok := cmd.(*domain.SendMessageCommand); ok && c.maxContentLength > 0 &&
		utf8.RuneCountInString(send.Content) > c.maxContentLength {
		return nil, fmt.Errorf("%w: content exceeds %d characters", errors.ErrInvalidPayload, c.maxContentLength)
	}
	return deref(cmd), nil
}

func deref(cmd domain.Command) domain.Command {
	switch v := cmd.(type) {
	case *domain.JoinRoomCommand:
		return *v
	case *domain.LeaveRoomCommand:
		return *v
	case *domain.SendMessageCommand:
		return *v
	case *domain.TypingStartCommand:
		return *v
	case *domain.TypingStopCommand:
		return *v
	case *domain.MarkReadCommand:
		return *v
	case *domain.FocusStartedCommand:
		return *v
	case *domain.FocusCompletedCommand:
		return *v
	}
	return cmd
}

// Encode renders an outbound fact.
func (c *Codec) Encode(fact domain.Fact) ([]byte, error) {
	payload, err := json.Marshal(fact.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: string(fact.Kind), RoomID: fact.RoomID, Payload: payload})
}

// EncodeCommand renders an inbound frame, used by clients and tests.
func EncodeCommand(cmd domain.Command) ([]byte, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: cmd.Kind(), Payload: payload})
}
