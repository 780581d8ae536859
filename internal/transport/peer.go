// internal/transport/peer.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/33VM/RajaMantri/internal/middleware"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Subprotocol is negotiated on every peer websocket.
const Subprotocol = "rmcs"

// Options configures a Peer.
type Options struct {
	// Listen is the host:port to accept connections on. Empty makes the peer
	// outbound-only: it can Connect but nobody can reach it.
	Listen string
	// Advertise is the location stored in the registry. Defaults to the
	// listener's bound address.
	Advertise string
	Registry  Registry
	// QueueSize bounds each connection's outbound queue.
	QueueSize int
}

// Peer is one participant's transport endpoint: a websocket listener bound
// to a registry address plus any number of dialed connections. All activity
// is reported on a single Events channel.
type Peer struct {
	opts   Options
	logger *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	events chan Event

	mu     sync.Mutex
	id     string
	srv    *http.Server
	addr   string
	conns  map[*wsConn]struct{}
	closed bool
}

// NewPeer returns an unopened peer.
func NewPeer(opts Options, logger *logrus.Logger) *Peer {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Registry == nil {
		opts.Registry = NewMemoryRegistry()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Peer{
		opts:   opts,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 256),
		conns:  make(map[*wsConn]struct{}),
	}
}

// Open assigns the peer its address. An empty id picks a random one. When
// a listen address is configured the id is claimed in the registry and the
// websocket endpoint starts serving; a taken id fails with ErrAddressInUse.
func (p *Peer) Open(ctx context.Context, id string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return "", ErrClosed
	}
	if p.id != "" {
		p.mu.Unlock()
		return "", fmt.Errorf("peer already open as %s", p.id)
	}
	p.id = id
	p.mu.Unlock()

	if p.opts.Listen == "" {
		return id, nil
	}

	ln, err := net.Listen("tcp", p.opts.Listen)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", p.opts.Listen, err)
	}
	advertise := p.opts.Advertise
	if advertise == "" {
		advertise = ln.Addr().String()
	}
	if err := p.opts.Registry.Claim(ctx, id, advertise); err != nil {
		_ = ln.Close()
		p.mu.Lock()
		p.id = ""
		p.mu.Unlock()
		return "", err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /peer/{id}", p.handlePeer)
	srv := &http.Server{
		Handler:           middleware.LogMiddleware(p.logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	p.mu.Lock()
	p.srv = srv
	p.addr = ln.Addr().String()
	p.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Errorf("Peer %s listener stopped: %v", id, err)
		}
	}()
	p.logger.Infof("Peer %s listening on %s (advertised as %s)", id, p.addr, advertise)
	return id, nil
}

// ID returns the peer's address, empty until Open succeeds.
func (p *Peer) ID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.id
}

// Addr returns the bound listen address, empty for outbound-only peers.
func (p *Peer) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addr
}

// Events delivers lifecycle and data notifications for every connection.
func (p *Peer) Events() <-chan Event {
	return p.events
}

// Connect resolves remoteID and dials it. ctx bounds the dial only.
func (p *Peer) Connect(ctx context.Context, remoteID string) (Conn, error) {
	local := p.ID()
	if local == "" {
		return nil, fmt.Errorf("connect before open: %w", ErrClosed)
	}
	addr, err := p.opts.Registry.Resolve(ctx, remoteID)
	if err != nil {
		return nil, err
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     addr,
		Path:     "/peer/" + remoteID,
		RawQuery: url.Values{"from": {local}}.Encode(),
	}
	ws, resp, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{
		Subprotocols: []string{Subprotocol},
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrPeerNotFound, remoteID)
		}
		return nil, fmt.Errorf("%w: %s at %s: %v", ErrUnreachable, remoteID, addr, err)
	}
	if ws.Subprotocol() != Subprotocol {
		ws.Close(websocket.StatusPolicyViolation, "expected the "+Subprotocol+" subprotocol")
		return nil, fmt.Errorf("%w: %s did not negotiate %s", ErrUnreachable, remoteID, Subprotocol)
	}

	c, err := p.track(remoteID, ws)
	if err != nil {
		return nil, err
	}
	go c.run()
	return c, nil
}

// handlePeer accepts an inbound websocket addressed to this peer.
func (p *Peer) handlePeer(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("id") != p.ID() {
		http.Error(w, "Unknown peer", http.StatusNotFound)
		return
	}
	from := r.URL.Query().Get("from")
	if from == "" {
		http.Error(w, "Missing from parameter", http.StatusBadRequest)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{Subprotocol},
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		p.logger.Warnf("WebSocket accept error from %s: %v", from, err)
		return
	}
	if ws.Subprotocol() != Subprotocol {
		p.logger.Warnf("Peer %s connected with invalid subprotocol: %q", from, ws.Subprotocol())
		ws.Close(websocket.StatusPolicyViolation, "Client must use the '"+Subprotocol+"' subprotocol.")
		return
	}

	c, err := p.track(from, ws)
	if err != nil {
		return
	}
	// the handler owns the connection until the read loop ends
	c.run()
}

// track registers a live connection and announces it.
func (p *Peer) track(remote string, ws *websocket.Conn) (*wsConn, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		ws.Close(websocket.StatusGoingAway, "peer closed")
		return nil, ErrClosed
	}
	c := newConn(p, remote, ws)
	p.conns[c] = struct{}{}
	local := p.id
	p.mu.Unlock()

	middleware.LogPeerConnect(p.logger, local, remote)
	p.emit(Event{Kind: EventOpen, Conn: c})
	return c, nil
}

func (p *Peer) forget(c *wsConn) {
	p.mu.Lock()
	delete(p.conns, c)
	p.mu.Unlock()
}

// emit delivers ev unless the peer has been closed.
func (p *Peer) emit(ev Event) {
	select {
	case p.events <- ev:
	case <-p.ctx.Done():
	}
}

// Close tears down every connection, stops the listener and releases the
// registry claim.
func (p *Peer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	conns := make([]*wsConn, 0, len(p.conns))
	for c := range p.conns {
		conns = append(conns, c)
	}
	srv, id := p.srv, p.id
	p.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	p.cancel()

	var errs []error
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop listener: %w", err))
		}
		cancel()
		ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		if err := p.opts.Registry.Release(ctx, id); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	return errors.Join(errs...)
}
