// Package event carries technical telemetry: what happened inside the process,
// as opposed to the facts pushed to clients.
package event

import "time"

type Type string

type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

func New(t Type, payload any) Event {
	return Event{Type: t, CreatedAt: time.Now().UTC(), Payload: payload}
}
