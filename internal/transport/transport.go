// internal/transport/transport.go
package transport

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAddressInUse is returned when another peer already holds the address.
	ErrAddressInUse = errors.New("peer address already in use")
	// ErrPeerNotFound is returned when a remote address resolves to nobody.
	ErrPeerNotFound = errors.New("peer not found")
	// ErrUnreachable is returned when the remote peer resolved but could not be dialed.
	ErrUnreachable = errors.New("peer unreachable")
	// ErrClosed is returned when sending on a closed connection or peer.
	ErrClosed = errors.New("connection closed")
)

// EventKind tags the lifecycle notifications a Peer emits.
type EventKind int

const (
	EventOpen EventKind = iota
	EventData
	EventClose
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventData:
		return "data"
	case EventClose:
		return "close"
	case EventError:
		return "error"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one notification from the transport. Conn is set for every kind;
// Data only for EventData and Err only for EventError.
type Event struct {
	Kind EventKind
	Conn Conn
	Data []byte
	Err  error
}

// Conn is an ordered, reliable, bidirectional message channel to one remote peer.
type Conn interface {
	// Peer returns the remote peer's address.
	Peer() string
	// Send queues data for delivery. It never blocks; messages sent on one
	// Conn arrive in order.
	Send(data []byte) error
	Close() error
}

// Dialer opens outbound connections and reports what happens on them.
type Dialer interface {
	ID() string
	Connect(ctx context.Context, remoteID string) (Conn, error)
	Events() <-chan Event
}
