package session

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/33VM/RajaMantri/internal/commentary"
	"github.com/33VM/RajaMantri/internal/models"
	"github.com/33VM/RajaMantri/internal/protocol"
	"github.com/33VM/RajaMantri/internal/transport"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const hostID = "rmcs-game-v1-TEST"

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeConn records everything sent to it.
type fakeConn struct {
	peer string

	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func newFakeConn(peer string) *fakeConn {
	return &fakeConn{peer: peer}
}

func (c *fakeConn) Peer() string { return c.peer }

func (c *fakeConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return transport.ErrClosed
	}
	c.sent = append(c.sent, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func (c *fakeConn) lastRaw(t *testing.T) []byte {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.sent, "nothing sent to %s", c.peer)
	return c.sent[len(c.sent)-1]
}

// last decodes the most recent STATE_UPDATE sent to the connection.
func (c *fakeConn) last(t *testing.T) models.GameState {
	t.Helper()
	msg, err := protocol.Decode(c.lastRaw(t))
	require.NoError(t, err)
	require.Equal(t, protocol.KindStateUpdate, msg.Type)
	state, err := msg.StatePayload()
	require.NoError(t, err)
	return state
}

// hostHarness drives a Host through fake transport events.
type hostHarness struct {
	t      *testing.T
	host   *Host
	events chan transport.Event
	states chan models.GameState
	conns  map[string]*fakeConn
}

func newHarness(t *testing.T, seed int64, narrator commentary.Commentator) *hostHarness {
	t.Helper()
	hh := &hostHarness{
		t:      t,
		events: make(chan transport.Event, 64),
		states: make(chan models.GameState, 64),
		conns:  make(map[string]*fakeConn),
	}
	hh.host = NewHost(hh.events, HostConfig{
		ID:                hostID,
		Name:              "Raja Sahib",
		Commentator:       narrator,
		CommentaryTimeout: time.Second,
		Rand:              rand.New(rand.NewSource(seed)),
		OnState:           func(s models.GameState) { hh.states <- s },
	}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hh.host.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hh
}

func (hh *hostHarness) open(id string) *fakeConn {
	c := newFakeConn(id)
	hh.conns[id] = c
	hh.events <- transport.Event{Kind: transport.EventOpen, Conn: c}
	return c
}

func (hh *hostHarness) sendRaw(c *fakeConn, data []byte) {
	hh.events <- transport.Event{Kind: transport.EventData, Conn: c, Data: data}
}

func (hh *hostHarness) send(c *fakeConn, msg protocol.Message) {
	data, err := protocol.Encode(msg)
	require.NoError(hh.t, err)
	hh.sendRaw(c, data)
}

func (hh *hostHarness) disconnect(c *fakeConn) {
	_ = c.Close()
	hh.events <- transport.Event{Kind: transport.EventClose, Conn: c}
}

// join opens a connection for id, sends JOIN and waits until the seat shows up.
func (hh *hostHarness) join(id, name string) *fakeConn {
	hh.t.Helper()
	c := hh.open(id)
	hh.send(c, protocol.NewJoin(name, id))
	hh.waitState(func(s models.GameState) bool {
		_, ok := s.PlayerByID(id)
		return ok
	})
	return c
}

// fillRoom seats three remote players next to the host.
func (hh *hostHarness) fillRoom() []*fakeConn {
	hh.t.Helper()
	return []*fakeConn{
		hh.join("peer-a", "Aarav"),
		hh.join("peer-b", "Bhavna"),
		hh.join("peer-c", "Chirag"),
	}
}

// waitState returns the first published state matching pred.
func (hh *hostHarness) waitState(pred func(models.GameState) bool) models.GameState {
	hh.t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case s := <-hh.states:
			if pred(s) {
				return s
			}
		case <-timeout:
			hh.t.Fatalf("timed out waiting for state")
		}
	}
}

func (hh *hostHarness) waitPhase(p models.Phase) models.GameState {
	hh.t.Helper()
	return hh.waitState(func(s models.GameState) bool { return s.Phase == p })
}

// flushUnchanged waits until every event queued so far has been processed,
// then asserts none of them changed the state. watch must be seated: its
// duplicate JOIN is rejected and answered with a snapshot to watch alone.
func (hh *hostHarness) flushUnchanged(watch *fakeConn) {
	hh.t.Helper()
	n := watch.count()
	hh.send(watch, protocol.NewJoin("", watch.peer))
	require.Eventually(hh.t, func() bool { return watch.count() > n }, 3*time.Second, 5*time.Millisecond)
	require.Empty(hh.t, hh.states, "no state change expected")
}

// drain discards published states.
func (hh *hostHarness) drain() {
	for {
		select {
		case <-hh.states:
		default:
			return
		}
	}
}

// guessAs sends a GUESS from whoever holds the seat, the host included.
func (hh *hostHarness) guessAs(actor, suspect string) {
	hh.t.Helper()
	if actor == hostID {
		require.NoError(hh.t, hh.host.Guess(suspect))
		return
	}
	hh.send(hh.conns[actor], protocol.NewGuess(suspect))
}

// gate is a commentator that blocks until released.
type gate struct {
	release chan string
	asked   chan commentary.Request
}

func newGate() *gate {
	return &gate{release: make(chan string, 1), asked: make(chan commentary.Request, 4)}
}

func (g *gate) Comment(ctx context.Context, req commentary.Request) string {
	g.asked <- req
	select {
	case text := <-g.release:
		return text
	case <-ctx.Done():
		return commentary.ErrorLine
	}
}

// fakeDialer is a client-side transport whose events the test controls.
type fakeDialer struct {
	id     string
	events chan transport.Event
	conn   *fakeConn
	err    error
	dialed string
}

func newFakeDialer(id string) *fakeDialer {
	return &fakeDialer{id: id, events: make(chan transport.Event, 16)}
}

func (d *fakeDialer) ID() string { return d.id }

func (d *fakeDialer) Connect(_ context.Context, remoteID string) (transport.Conn, error) {
	d.dialed = remoteID
	if d.err != nil {
		return nil, d.err
	}
	d.conn = newFakeConn(remoteID)
	return d.conn, nil
}

func (d *fakeDialer) Events() <-chan transport.Event { return d.events }
