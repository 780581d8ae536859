// internal/protocol/message.go
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/33VM/RajaMantri/internal/models"
)

// Kind tags a wire message. The set is closed.
type Kind string

const (
	KindJoin        Kind = "JOIN"
	KindStartGame   Kind = "START_GAME"
	KindGuess       Kind = "GUESS"
	KindRestart     Kind = "RESTART"
	KindStateUpdate Kind = "STATE_UPDATE"
)

// Direction says which side of a host/client connection may send a kind.
type Direction int

const (
	ClientToHost Direction = iota
	HostToClient
)

var (
	ErrUnknownKind = errors.New("unknown message kind")
	ErrMalformed   = errors.New("malformed message")
)

// Direction reports who is allowed to send k.
func (k Kind) Direction() Direction {
	if k == KindStateUpdate {
		return HostToClient
	}
	return ClientToHost
}

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindJoin, KindStartGame, KindGuess, KindRestart, KindStateUpdate:
		return true
	}
	return false
}

// Message is the envelope exchanged over a connection. It is built at send
// time and consumed on receipt, never stored.
type Message struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Join is the JOIN payload.
type Join struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Guess is the GUESS payload.
type Guess struct {
	SuspectID string `json:"suspectId"`
}

func newMessage(kind Kind, payload any) Message {
	msg := Message{Type: kind}
	if payload == nil {
		return msg
	}
	// payload types in this package always marshal
	data, _ := json.Marshal(payload)
	msg.Payload = data
	return msg
}

func NewJoin(name, id string) Message {
	return newMessage(KindJoin, Join{Name: name, ID: id})
}

func NewStartGame() Message {
	return newMessage(KindStartGame, nil)
}

func NewGuess(suspectID string) Message {
	return newMessage(KindGuess, Guess{SuspectID: suspectID})
}

func NewRestart() Message {
	return newMessage(KindRestart, nil)
}

// NewStateUpdate wraps a full snapshot.
func NewStateUpdate(state models.GameState) (Message, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal game state: %w", err)
	}
	return Message{Type: KindStateUpdate, Payload: data}, nil
}

// Encode serializes a message for the wire.
func Encode(msg Message) ([]byte, error) {
	if !msg.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, msg.Type)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", msg.Type, err)
	}
	return data, nil
}

// Decode parses a frame from the wire and rejects kinds outside the protocol.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !msg.Type.Valid() {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownKind, msg.Type)
	}
	return msg, nil
}

// JoinPayload extracts the JOIN payload.
func (m Message) JoinPayload() (Join, error) {
	var p Join
	if err := m.decodePayload(KindJoin, &p); err != nil {
		return Join{}, err
	}
	return p, nil
}

// GuessPayload extracts the GUESS payload.
func (m Message) GuessPayload() (Guess, error) {
	var p Guess
	if err := m.decodePayload(KindGuess, &p); err != nil {
		return Guess{}, err
	}
	return p, nil
}

// StatePayload extracts the snapshot from a STATE_UPDATE.
func (m Message) StatePayload() (models.GameState, error) {
	var s models.GameState
	if err := m.decodePayload(KindStateUpdate, &s); err != nil {
		return models.GameState{}, err
	}
	if s.Players == nil {
		s.Players = []models.Player{}
	}
	return s, nil
}

func (m Message) decodePayload(want Kind, v any) error {
	if m.Type != want {
		return fmt.Errorf("%w: expected %s payload, message is %s", ErrMalformed, want, m.Type)
	}
	if len(m.Payload) == 0 {
		return fmt.Errorf("%w: %s without payload", ErrMalformed, want)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrMalformed, want, err)
	}
	return nil
}
