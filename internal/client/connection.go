// Package client implements the TCP client for the simulation server:
// the connection lifecycle and the scene-synchronization state machine
// that drives the request/response protocol.
package client

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// ConnState is the connection lifecycle state.
type ConnState int

const (
	ConnDisconnected ConnState = iota
	ConnConnecting
	ConnConnected
	ConnClosing
)

func (s ConnState) String() string {
	switch s {
	case ConnConnecting:
		return "connecting"
	case ConnConnected:
		return "connected"
	case ConnClosing:
		return "closing"
	default:
		return "disconnected"
	}
}

const (
	dialTimeout  = 5 * time.Second
	writeTimeout = 5 * time.Second
)

// Connection owns the socket. It is destroyed and nulled on any I/O
// failure or explicit close; nothing else holds the net.Conn.
type Connection struct {
	mu     sync.Mutex
	conn   net.Conn
	state  ConnState
	logger *slog.Logger

	// onClose runs on every Close, whether or not socket teardown
	// succeeds. The synchronizer hooks scene clearing here.
	onClose func()
}

// NewConnection returns a disconnected connection.
func NewConnection(logger *slog.Logger) *Connection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Connection{logger: logger}
}

// OnClose registers the teardown hook.
func (c *Connection) OnClose(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = fn
}

// State returns the current lifecycle state.
func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens a stream socket to the server. A no-op when already
// connected. Failures leave no side effects.
func (c *Connection) Connect(address string, port int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ConnConnected {
		return nil
	}

	c.state = ConnConnecting
	addr := net.JoinHostPort(address, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		c.state = ConnDisconnected
		return fmt.Errorf("connect to %s: %w", addr, err)
	}

	c.conn = conn
	c.state = ConnConnected
	c.logger.Info("connected", "address", addr)
	return nil
}

// IsAlive probes connectivity without consuming stream data. A peer
// that has closed the socket gracefully reads as zero bytes on a peek,
// which counts as disconnection.
func (c *Connection) IsAlive() bool {
	c.mu.Lock()
	conn := c.conn
	state := c.state
	c.mu.Unlock()
	if conn == nil || state != ConnConnected {
		return false
	}
	return peekAlive(conn)
}

// Read implements frame.Conn.
func (c *Connection) Read(p []byte) (int, error) {
	conn := c.current()
	if conn == nil {
		return 0, net.ErrClosed
	}
	return conn.Read(p)
}

// SetReadDeadline implements frame.Conn.
func (c *Connection) SetReadDeadline(t time.Time) error {
	conn := c.current()
	if conn == nil {
		return net.ErrClosed
	}
	return conn.SetReadDeadline(t)
}

// Write sends the whole buffer within the write deadline.
func (c *Connection) Write(p []byte) error {
	conn := c.current()
	if conn == nil {
		return net.ErrClosed
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	for len(p) > 0 {
		n, err := conn.Write(p)
		if err != nil {
			return fmt.Errorf("write request: %w", err)
		}
		p = p[n:]
	}
	return nil
}

func (c *Connection) current() net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// Close tears the socket down best effort and always runs the close
// hook. Teardown errors are swallowed; there is nothing further the
// caller could do with them.
func (c *Connection) Close() {
	c.mu.Lock()
	if c.state == ConnClosing {
		c.mu.Unlock()
		return
	}
	c.state = ConnClosing
	conn := c.conn
	c.conn = nil
	hook := c.onClose
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			c.logger.Debug("socket close failed", "error", err)
		}
	}
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	c.state = ConnDisconnected
	c.mu.Unlock()
	c.logger.Info("disconnected")
}
