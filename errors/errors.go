package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrInvalidPayload   = fmt.Errorf("invalid payload")
	ErrUnknownEvent     = fmt.Errorf("unknown event kind")
	ErrUnknownAction    = fmt.Errorf("unknown reputation action")
	ErrAuth             = fmt.Errorf("authentication failed")
	ErrRoomNotFound     = fmt.Errorf("room not found")
	ErrNotAMember       = fmt.Errorf("not a member of the room")
	ErrPersistence      = fmt.Errorf("message persistence failed")
	ErrReputationUpdate = fmt.Errorf("reputation update failed")
	ErrConnectionClosed = fmt.Errorf("connection closed")

	// Store errors, no retry is attempted on any of them
	ErrNotFound  = fmt.Errorf("not found")
	ErrConflict  = fmt.Errorf("conflict")
	ErrTransient = fmt.Errorf("transient store failure")
)
