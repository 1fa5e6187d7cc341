// Package domain contains core concepts of the presence system.
// This file defines the identity bound to a live connection.
// No runtime, network, or UI logic should be added here.
package domain

type UserID string

type ConnID string

// Identity is resolved once at handshake and never mutated afterward.
type Identity struct {
	UserID      UserID
	DisplayName string
}

// Profile is the public sender information attached to broadcast messages.
type Profile struct {
	UserID      UserID
	DisplayName string
	AvatarURL   string
}
