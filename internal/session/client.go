// internal/session/client.go
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/33VM/RajaMantri/internal/game"
	"github.com/33VM/RajaMantri/internal/models"
	"github.com/33VM/RajaMantri/internal/protocol"
	"github.com/33VM/RajaMantri/internal/room"
	"github.com/33VM/RajaMantri/internal/transport"
	"github.com/sirupsen/logrus"
)

// ClientConfig configures a joining participant.
type ClientConfig struct {
	Name string
	// OnState is called from Run with every snapshot received from the host.
	OnState func(models.GameState)
}

// Client mirrors the host's state. It never computes transitions itself:
// intents go to the host and each STATE_UPDATE replaces the local copy.
type Client struct {
	dialer transport.Dialer
	cfg    ClientConfig
	logger *logrus.Logger

	mu   sync.Mutex
	host transport.Conn

	state atomic.Pointer[models.GameState]
}

func NewClient(dialer transport.Dialer, cfg ClientConfig, logger *logrus.Logger) *Client {
	c := &Client{dialer: dialer, cfg: cfg, logger: logger}
	initial := models.NewGameState()
	c.state.Store(&initial)
	return c
}

// ID returns this client's peer address.
func (c *Client) ID() string {
	return c.dialer.ID()
}

// State returns the last snapshot received from the host.
func (c *Client) State() models.GameState {
	return *c.state.Load()
}

// Self returns this client's seat in the current snapshot.
func (c *Client) Self() (models.Player, bool) {
	return c.State().PlayerByID(c.ID())
}

// Join connects to the room's host and asks for a seat.
func (c *Client) Join(ctx context.Context, code room.Code) error {
	conn, err := c.dialer.Connect(ctx, room.PeerAddress(code))
	if err != nil {
		return fmt.Errorf("failed to join room %s: %w", code, err)
	}
	c.mu.Lock()
	c.host = conn
	c.mu.Unlock()

	c.logger.Infof("Connected to room %s, requesting a seat as %q", code, c.cfg.Name)
	return c.send(protocol.NewJoin(c.cfg.Name, c.ID()))
}

// Run consumes the host connection until it closes, which is reported as
// ErrHostDisconnected. There is no reconnection.
func (c *Client) Run(ctx context.Context) error {
	events := c.dialer.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ErrHostDisconnected
			}
			if !c.fromHost(ev.Conn) {
				continue
			}
			switch ev.Kind {
			case transport.EventData:
				c.receive(ev.Data)
			case transport.EventError:
				c.logger.Warnf("Host connection error: %v", ev.Err)
			case transport.EventClose:
				c.logger.Infof("Host %s closed the connection", ev.Conn.Peer())
				return ErrHostDisconnected
			}
		}
	}
}

func (c *Client) fromHost(conn transport.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.host != nil && conn == c.host
}

func (c *Client) receive(data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		c.logger.Warnf("Ignoring message from host: %v", err)
		return
	}
	if msg.Type != protocol.KindStateUpdate {
		c.logger.Warnf("Ignoring %s from host", msg.Type)
		return
	}
	state, err := msg.StatePayload()
	if err != nil {
		c.logger.Warnf("Ignoring unreadable state update: %v", err)
		return
	}
	// the host is trusted; a bad snapshot is reported and still shown
	if err := game.Validate(state); err != nil {
		c.logger.Warnf("Host sent a suspicious state: %v", err)
	}
	c.state.Store(&state)
	c.logger.Debugf("State replaced: phase %s round %d, %d players", state.Phase, state.Round, len(state.Players))
	if c.cfg.OnState != nil {
		c.cfg.OnState(state)
	}
}

func (c *Client) send(msg protocol.Message) error {
	c.mu.Lock()
	conn := c.host
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	if err := conn.Send(data); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.Type, err)
	}
	return nil
}

// Start asks the host to deal the first round.
func (c *Client) Start() error { return c.send(protocol.NewStartGame()) }

// Guess names a suspect; the host ignores it unless this client is the Mantri.
func (c *Client) Guess(suspectID string) error { return c.send(protocol.NewGuess(suspectID)) }

// Restart asks the host for the next round.
func (c *Client) Restart() error { return c.send(protocol.NewRestart()) }
