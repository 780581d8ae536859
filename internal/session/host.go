// internal/session/host.go
package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/33VM/RajaMantri/internal/commentary"
	"github.com/33VM/RajaMantri/internal/game"
	"github.com/33VM/RajaMantri/internal/models"
	"github.com/33VM/RajaMantri/internal/protocol"
	"github.com/33VM/RajaMantri/internal/transport"
	"github.com/sirupsen/logrus"
)

const DefaultCommentaryTimeout = 15 * time.Second

// HostConfig configures the authoritative side of a room.
type HostConfig struct {
	// ID is the host's own peer address; the host is seated under it.
	ID   string
	Name string

	Commentator       commentary.Commentator
	CommentaryTimeout time.Duration
	// Rand drives the deal. Defaults to a time-seeded source.
	Rand game.Shuffler

	// OnState is called from the event loop after every accepted change.
	OnState func(models.GameState)
}

// Host owns the single source of truth for a room. All mutations happen on
// the goroutine running Run; readers use State.
type Host struct {
	cfg    HostConfig
	logger *logrus.Logger
	events <-chan transport.Event

	local    chan game.Action
	narrated chan game.Action
	done     chan struct{}
	stopOnce sync.Once

	state atomic.Pointer[models.GameState]
	prev  atomic.Pointer[models.GameState]

	// owned by the loop
	conns map[string]transport.Conn
}

// NewHost seats the host in a fresh lobby. events is usually the host
// peer's Events channel.
func NewHost(events <-chan transport.Event, cfg HostConfig, logger *logrus.Logger) *Host {
	if cfg.Commentator == nil {
		cfg.Commentator = commentary.Static(commentary.MissingKeyLine)
	}
	if cfg.CommentaryTimeout <= 0 {
		cfg.CommentaryTimeout = DefaultCommentaryTimeout
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	h := &Host{
		cfg:      cfg,
		logger:   logger,
		events:   events,
		local:    make(chan game.Action, 16),
		narrated: make(chan game.Action, 1),
		done:     make(chan struct{}),
		conns:    make(map[string]transport.Conn),
	}

	initial, _ := game.Apply(models.NewGameState(), game.Action{
		Kind:  game.ActionJoin,
		Actor: cfg.ID,
		Name:  cfg.Name,
		Host:  true,
	}, cfg.Rand)
	h.state.Store(&initial)
	return h
}

// State returns the current authoritative snapshot.
func (h *Host) State() models.GameState {
	return *h.state.Load()
}

// Previous returns the snapshot replaced by the last accepted change.
func (h *Host) Previous() (models.GameState, bool) {
	p := h.prev.Load()
	if p == nil {
		return models.GameState{}, false
	}
	return *p, true
}

// Run processes transport events, local intents and narrator results until
// ctx is done or the event channel closes.
func (h *Host) Run(ctx context.Context) error {
	defer h.stopOnce.Do(func() { close(h.done) })
	h.logger.Infof("Hosting room as %s", h.cfg.ID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-h.events:
			if !ok {
				return fmt.Errorf("host %s: %w", h.cfg.ID, transport.ErrClosed)
			}
			h.handleEvent(ctx, ev)
		case a := <-h.local:
			h.apply(ctx, a)
		case a := <-h.narrated:
			h.apply(ctx, a)
		}
	}
}

func (h *Host) handleEvent(ctx context.Context, ev transport.Event) {
	peer := ev.Conn.Peer()
	switch ev.Kind {
	case transport.EventOpen:
		h.conns[peer] = ev.Conn
		h.logger.Debugf("Connection opened from %s", peer)

	case transport.EventData:
		msg, err := protocol.Decode(ev.Data)
		if err != nil {
			h.logger.Warnf("Ignoring message from %s: %v", peer, err)
			return
		}
		if msg.Type.Direction() != protocol.ClientToHost {
			h.logger.Warnf("Ignoring %s from %s: not a client message", msg.Type, peer)
			return
		}
		a, ok := h.actionFor(peer, msg)
		if !ok {
			h.logger.Warnf("Ignoring malformed %s from %s", msg.Type, peer)
			return
		}
		if !h.apply(ctx, a) && a.Kind == game.ActionJoin {
			// let a rejected joiner see the room as it stands
			h.sendState(ev.Conn, h.State())
		}

	case transport.EventClose:
		if h.conns[peer] != ev.Conn {
			// a superseded or never-tracked socket; the peer may still be live
			h.logger.Debugf("Stale connection from %s closed", peer)
			return
		}
		delete(h.conns, peer)
		h.logger.Infof("Connection from %s closed", peer)
		h.apply(ctx, game.Action{Kind: game.ActionLeave, Actor: peer})

	case transport.EventError:
		h.logger.Warnf("Connection error from %s: %v", peer, ev.Err)
	}
}

// actionFor converts a wire message into a reducer action attributed to
// actor. Local intents and remote messages share this path.
func (h *Host) actionFor(actor string, msg protocol.Message) (game.Action, bool) {
	switch msg.Type {
	case protocol.KindJoin:
		p, err := msg.JoinPayload()
		if err != nil || p.ID != actor {
			return game.Action{}, false
		}
		return game.Action{Kind: game.ActionJoin, Actor: actor, Name: p.Name, Host: actor == h.cfg.ID}, true
	case protocol.KindStartGame:
		return game.Action{Kind: game.ActionStart, Actor: actor}, true
	case protocol.KindGuess:
		p, err := msg.GuessPayload()
		if err != nil {
			return game.Action{}, false
		}
		return game.Action{Kind: game.ActionGuess, Actor: actor, SuspectID: p.SuspectID}, true
	case protocol.KindRestart:
		return game.Action{Kind: game.ActionNextRound, Actor: actor}, true
	}
	return game.Action{}, false
}

// apply runs the reducer and, on change, publishes and broadcasts the new
// snapshot. It reports whether the state changed.
func (h *Host) apply(ctx context.Context, a game.Action) bool {
	cur := h.State()
	next, changed := game.Apply(cur, a, h.cfg.Rand)
	if !changed {
		h.logger.Debugf("Action %s ignored in phase %s", a, cur.Phase)
		return false
	}
	h.prev.Store(&cur)
	h.state.Store(&next)
	h.logger.Debugf("Action %s moved room to %s (round %d)", a, next.Phase, next.Round)

	h.broadcast(next)
	if h.cfg.OnState != nil {
		h.cfg.OnState(next)
	}
	if a.Kind == game.ActionGuess {
		h.narrate(ctx, next)
	}
	return true
}

// broadcast sends state to every seated remote player. Connections without
// a seat get nothing beyond the snapshot answering their rejected JOIN.
func (h *Host) broadcast(state models.GameState) {
	data, err := encodeState(state)
	if err != nil {
		h.logger.Errorf("Failed to encode state: %v", err)
		return
	}
	for _, p := range state.Players {
		c, ok := h.conns[p.ID]
		if !ok {
			continue
		}
		if err := c.Send(data); err != nil {
			h.logger.Warnf("Failed to send state to %s: %v", p.ID, err)
		}
	}
}

func (h *Host) sendState(c transport.Conn, state models.GameState) {
	data, err := encodeState(state)
	if err != nil {
		h.logger.Errorf("Failed to encode state: %v", err)
		return
	}
	if err := c.Send(data); err != nil {
		h.logger.Warnf("Failed to send state to %s: %v", c.Peer(), err)
	}
}

func encodeState(state models.GameState) ([]byte, error) {
	msg, err := protocol.NewStateUpdate(state)
	if err != nil {
		return nil, err
	}
	return protocol.Encode(msg)
}

// narrate asks the commentator about a resolved round off the loop and
// feeds the answer back in, tagged with the round it belongs to.
func (h *Host) narrate(ctx context.Context, state models.GameState) {
	req, ok := commentary.RequestFor(state)
	if !ok {
		return
	}
	round := state.Round
	go func() {
		cctx, cancel := context.WithTimeout(ctx, h.cfg.CommentaryTimeout)
		text := h.cfg.Commentator.Comment(cctx, req)
		cancel()
		if text == "" {
			text = commentary.EmptyLine
		}
		select {
		case h.narrated <- game.Action{Kind: game.ActionCommentary, Round: round, Text: text}:
		case <-h.done:
		}
	}()
}

// submit hands a local action to the loop.
func (h *Host) submit(a game.Action) error {
	select {
	case <-h.done:
		return ErrStopped
	default:
	}
	select {
	case h.local <- a:
		return nil
	case <-h.done:
		return ErrStopped
	}
}

// Dispatch feeds a message from the host's own player into the loop as if
// it had arrived over the wire from the host's address.
func (h *Host) Dispatch(msg protocol.Message) error {
	a, ok := h.actionFor(h.cfg.ID, msg)
	if !ok {
		return fmt.Errorf("cannot dispatch %s: %w", msg.Type, protocol.ErrMalformed)
	}
	return h.submit(a)
}

// Start deals the first round.
func (h *Host) Start() error {
	return h.Dispatch(protocol.NewStartGame())
}

// OpenCourt moves REVEAL to GUESS. It has no wire message; only the host can.
func (h *Host) OpenCourt() error {
	return h.submit(game.Action{Kind: game.ActionOpenCourt, Actor: h.cfg.ID})
}

// Guess names a suspect; it only counts when the host is the Mantri.
func (h *Host) Guess(suspectID string) error {
	return h.Dispatch(protocol.NewGuess(suspectID))
}

// NextRound deals again once the round's commentary is in.
func (h *Host) NextRound() error {
	return h.Dispatch(protocol.NewRestart())
}
