// internal/session/errors.go
package session

import (
	"errors"

	"github.com/33VM/RajaMantri/internal/transport"
)

var (
	// ErrHostDisconnected ends a client session when the host's connection closes.
	ErrHostDisconnected = errors.New("host disconnected")
	// ErrNotConnected is returned by client intents sent before Join.
	ErrNotConnected = errors.New("not connected to a host")
	// ErrStopped is returned by host intents once Run has returned.
	ErrStopped = errors.New("session stopped")
)

// User-facing messages for session failures.
const (
	MsgRoomTaken        = "Room code taken. Try another."
	MsgConnectionError  = "Connection error. Please refresh."
	MsgHostDisconnected = "Host disconnected"
	MsgCannotConnect    = "Could not connect to host"
)

// UserMessage turns a session or transport error into the line shown to the
// player. nil maps to the empty string.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, transport.ErrAddressInUse):
		return MsgRoomTaken
	case errors.Is(err, ErrHostDisconnected):
		return MsgHostDisconnected
	case errors.Is(err, transport.ErrPeerNotFound), errors.Is(err, transport.ErrUnreachable):
		return MsgCannotConnect
	}
	return MsgConnectionError
}
