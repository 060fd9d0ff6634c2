// Package connctx implements the connection-context state machine that a
// server-side handler uses to answer a single request: Fresh, then Active
// once a header has declared a body size, then Closed exactly once. It owns
// the accepted socket and is responsible for shutting it down and closing it
// no matter how the handler's use of it ends, mirroring the gfcontext_t
// lifecycle in original_source/mtgf/gfserver-student.h and gfserver.c.
package connctx

import (
	"errors"
	"io"
	"net"
	"sync"

	"github/sabouaram/getfile/protocol"
)

// ErrNotFresh is returned by SendHeader when the context has already sent a
// header (or been aborted/closed).
var ErrNotFresh = errors.New("connctx: send_header called outside Fresh state")

// ErrNotActive is returned by Send when the context never transitioned to
// Active, or has already closed.
var ErrNotActive = errors.New("connctx: send called outside Active state")

// ErrOverrun is returned by Send if the caller tries to push more bytes than
// the size declared to SendHeader.
var ErrOverrun = errors.New("connctx: send would exceed declared size")

type state int

const (
	stateFresh state = iota
	stateActive
	stateClosed
)

// Context is the per-connection state machine described in the spec's
// Connection Context section. It owns the accepted net.Conn and guarantees
// the conn is shut down and closed exactly once regardless of which
// transition triggers the close.
type Context struct {
	mu       sync.Mutex
	conn     net.Conn
	state    state
	expected uint64
	sent     uint64
}

// New wraps an accepted connection in a fresh Context.
func New(conn net.Conn) *Context {
	return &Context{conn: conn, state: stateFresh}
}

// SendHeader writes the response header. A status of StatusOk moves the
// context to Active(size, 0) so that Send may follow; any other status
// writes the header and closes the connection immediately, since no body is
// coming. A write failure always ends in Closed, with the error returned to
// the caller.
func (c *Context) SendHeader(status protocol.Status, size uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateFresh {
		return ErrNotFresh
	}

	header := protocol.SerializeResponse(protocol.Response{Status: status, Size: size})
	_, err := c.conn.Write(header)
	if err != nil {
		c.closeLocked()
		return err
	}

	if status != protocol.StatusOk {
		c.closeLocked()
		return nil
	}

	c.state = stateActive
	c.expected = size
	c.sent = 0
	return nil
}

// Send writes buf to the connection, accounting it against the size declared
// to SendHeader. Once sent reaches expected, the context transitions to
// Closed (half-close write, drain read, close) and the caller owes nothing
// further.
func (c *Context) Send(buf []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateActive {
		return ErrNotActive
	}
	if c.sent+uint64(len(buf)) > c.expected {
		c.closeLocked()
		return ErrOverrun
	}

	if _, err := c.conn.Write(buf); err != nil {
		c.closeLocked()
		return err
	}
	c.sent += uint64(len(buf))

	if c.sent == c.expected {
		c.closeLocked()
	}
	return nil
}

// Abort transitions the context to Closed from any state, taking ownership
// of the socket and tearing it down without sending anything further.
func (c *Context) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// Closed reports whether the context has already released its connection.
func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateClosed
}

// closeLocked performs the shutdown discipline shared by every path that
// ends a connection's life: half-close the write side, drain the read side,
// then close. A connection without CloseWrite (or whose half-close fails) is
// closed directly without draining, since the peer would never see an EOF
// to answer. It is idempotent so repeated calls (e.g. Abort after Send
// already closed) are safe.
func (c *Context) closeLocked() {
	if c.state == stateClosed {
		return
	}
	c.state = stateClosed

	if tc, ok := c.conn.(interface{ CloseWrite() error }); ok && tc.CloseWrite() == nil {
		buf := make([]byte, 4096)
		for {
			n, err := c.conn.Read(buf)
			if n == 0 || err != nil {
				break
			}
		}
	}
	_ = c.conn.Close()
}

var _ io.Closer = (*Context)(nil)

// Close is an alias for Abort so Context satisfies io.Closer for callers
// that want to defer a cleanup without checking whether a header was ever
// sent.
func (c *Context) Close() error {
	c.Abort()
	return nil
}
