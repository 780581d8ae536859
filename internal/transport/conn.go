// internal/transport/conn.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/33VM/RajaMantri/internal/middleware"
	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

const (
	DefaultQueueSize = 64

	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 1 << 16
)

// wsConn is one websocket to a remote peer. Outbound messages go through a
// buffered queue drained by a single writer goroutine, which keeps the order
// of Send calls on the wire.
type wsConn struct {
	owner  *Peer
	remote string
	ws     *websocket.Conn
	out    chan []byte
	logger *logrus.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newConn(owner *Peer, remote string, ws *websocket.Conn) *wsConn {
	ctx, cancel := context.WithCancel(owner.ctx)
	ws.SetReadLimit(readLimit)
	return &wsConn{
		owner:  owner,
		remote: remote,
		ws:     ws,
		out:    make(chan []byte, owner.opts.QueueSize),
		logger: owner.logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *wsConn) Peer() string { return c.remote }

func (c *wsConn) Send(data []byte) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case c.out <- data:
		return nil
	case <-c.ctx.Done():
		return ErrClosed
	default:
		c.logger.Warnf("Outbound queue to %s is full, dropping connection", c.remote)
		go c.Close()
		return fmt.Errorf("%w: outbound queue to %s full", ErrClosed, c.remote)
	}
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.ws.Close(websocket.StatusNormalClosure, "closing")
		c.cancel()
		c.owner.forget(c)
	})
	if err != nil && !isNormalClose(err) {
		return fmt.Errorf("failed to close connection to %s: %w", c.remote, err)
	}
	return nil
}

// run starts the writer and blocks in the reader until the connection ends.
// It emits exactly one EventClose.
func (c *wsConn) run() {
	go c.writePump()

	err := c.readPump()
	_ = c.Close()
	middleware.LogPeerDisconnect(c.logger, c.owner.ID(), c.remote, err)
	if err != nil {
		c.owner.emit(Event{Kind: EventError, Conn: c, Err: err})
	}
	c.owner.emit(Event{Kind: EventClose, Conn: c})
}

// readPump returns nil on an orderly close and the read error otherwise.
func (c *wsConn) readPump() error {
	for {
		typ, data, err := c.ws.Read(c.ctx)
		if err != nil {
			if isNormalClose(err) || c.ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read from %s: %w", c.remote, err)
		}
		if typ != websocket.MessageText {
			c.logger.Warnf("Ignoring non-text frame from %s", c.remote)
			continue
		}
		c.owner.emit(Event{Kind: EventData, Conn: c, Data: data})
	}
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.out:
			writeCtx, cancel := context.WithTimeout(c.ctx, writeTimeout)
			err := c.ws.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				if c.ctx.Err() == nil {
					c.logger.Warnf("Failed to write to %s: %v", c.remote, err)
				}
				_ = c.Close()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, writeTimeout)
			err := c.ws.Ping(pingCtx)
			cancel()
			if err != nil && c.ctx.Err() == nil {
				c.logger.Warnf("Ping to %s failed: %v", c.remote, err)
				_ = c.Close()
				return
			}
		}
	}
}

func isNormalClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled)
}
