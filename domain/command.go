package domain

// Command is an inbound client event, already decoded and validated.
// The set is closed: the router switches on the concrete type.
type Command interface {
	Kind() string
}

type JoinRoomCommand struct {
	Room RoomID `json:"roomId" validate:"required,max=128"`
}

type LeaveRoomCommand struct {
	Room RoomID `json:"roomId" validate:"required,max=128"`
}

type SendMessageCommand struct {
	Room    RoomID `json:"roomId" validate:"required,max=128"`
	Content string `json:"content" validate:"required"`
}

type TypingStartCommand struct {
	Room RoomID `json:"roomId" validate:"required,max=128"`
}

type TypingStopCommand struct {
	Room RoomID `json:"roomId" validate:"required,max=128"`
}

type MarkReadCommand struct {
	Room RoomID `json:"roomId" validate:"required,max=128"`
}

type FocusStartedCommand struct {
	Duration int `json:"duration" validate:"gte=0"`
}

type FocusCompletedCommand struct{}

func (JoinRoomCommand) Kind() string       { return "join_room" }
func (LeaveRoomCommand) Kind() string      { return "leave_room" }
func (SendMessageCommand) Kind() string    { return "send_message" }
func (TypingStartCommand) Kind() string    { return "typing_start" }
func (TypingStopCommand) Kind() string     { return "typing_stop" }
func (MarkReadCommand) Kind() string       { return "mark_read" }
func (FocusStartedCommand) Kind() string   { return "focus_started" }
func (FocusCompletedCommand) Kind() string { return "focus_completed" }
