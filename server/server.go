// Package server implements the GETFILE accept loop (§4.H): resolve and
// bind a listening socket, then repeatedly accept connections, parse the
// request header off each one with a single sequential Tokenizer instance,
// and hand the resulting ConnectionContext and path to a Handler. Bind
// hints, the select/accept-timeout tick, and the shutdown discipline on a
// malformed request all follow original_source/mtgf/gfserver.c; cancellation
// is cooperative via context.Context, sampled once per accept-timeout tick,
// resolving the spec's own "continue_fn vs in-band shutdown message" open
// question in favor of the former.
package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github/sabouaram/getfile/connctx"
	"github/sabouaram/getfile/dfa"
	liberr "github/sabouaram/getfile/errors"
	"github/sabouaram/getfile/log"
	"github/sabouaram/getfile/metrics"
	"github/sabouaram/getfile/protocol"
)

// Handler processes one parsed request. It owns ctx for the rest of the
// request's lifetime: it must eventually call ctx.SendHeader (and,
// depending on status, ctx.Send) or ctx.Abort.
type Handler interface {
	Handle(ctx *connctx.Context, path string)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx *connctx.Context, path string)

func (f HandlerFunc) Handle(ctx *connctx.Context, path string) { f(ctx, path) }

// defaultAcceptTimeout is the liveness knob from §4.H: short enough that
// cancellation is noticed promptly, not a correctness requirement.
const defaultAcceptTimeout = 50 * time.Millisecond

// Server listens on a single TCP address and dispatches accepted
// connections to a Handler.
type Server struct {
	listener      *net.TCPListener
	handler       Handler
	log           *log.Logger
	acceptTimeout time.Duration
	idleTimeout   time.Duration
	table         *dfa.Table
}

// New resolves addr (host:port, host may be empty to bind all interfaces)
// to a single address and starts listening on it; other resolved
// addresses are not tried if that bind fails. net.ListenTCP marks the
// socket SO_REUSEADDR. The backlog argument is not applied: the listen
// queue length is the operating system's default.
//
// idleTimeout bounds how long handleConnection will wait for the next byte
// of a request header; zero or negative disables the deadline.
func New(addr string, backlog int, idleTimeout time.Duration, handler Handler, logger *log.Logger) (*Server, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, liberr.ErrorGetfileResolveFailed.Error(err)
	}
	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) || errors.Is(err, syscall.EADDRNOTAVAIL) {
			return nil, liberr.ErrorGetfileBindFailed.Error(err)
		}
		return nil, liberr.ErrorGetfileListenFailed.Error(err)
	}
	_ = backlog // Go's net package does not expose a listen(2) backlog knob; the OS default applies.

	if logger == nil {
		logger = log.Discard()
	}

	return &Server{
		listener:      ln,
		handler:       handler,
		log:           logger,
		acceptTimeout: defaultAcceptTimeout,
		idleTimeout:   idleTimeout,
		table:         protocol.NewTable(),
	}, nil
}

// Port returns the port actually bound, useful when addr requested an
// ephemeral port (":0").
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Addr returns the bound address as host:port, useful when addr requested
// an ephemeral port (":0").
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close releases the listening socket.
func (s *Server) Close() error {
	return s.listener.Close()
}

// Serve runs the accept loop until ctx is cancelled or a fatal listener
// error occurs. Cancellation is sampled once per accept-timeout tick: a
// call to cancel may take up to that long to be observed, per §4.H and §5.
func (s *Server) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := s.listener.SetDeadline(time.Now().Add(s.acceptTimeout)); err != nil {
			return err
		}

		conn, err := s.listener.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.WithError(liberr.ErrorGetfileAcceptFailed.Error(err)).Warn("accept")
			continue
		}

		metrics.OpenConnections.Inc()
		s.handleConnection(&countingConn{Conn: conn}, uuid.New().String())
	}
}

// countingConn decrements metrics.OpenConnections exactly once when the
// underlying connection is closed, however that close is reached
// (connctx's own shutdown discipline, or rejectInvalid's).
type countingConn struct {
	net.Conn
	once sync.Once
}

func (c *countingConn) Close() error {
	c.once.Do(metrics.OpenConnections.Dec)
	return c.Conn.Close()
}

// CloseWrite forwards to the underlying connection's half-close when it has
// one (e.g. *net.TCPConn), so wrapping here doesn't hide it from connctx's
// own type assertion.
func (c *countingConn) CloseWrite() error {
	if tc, ok := c.Conn.(interface{ CloseWrite() error }); ok {
		return tc.CloseWrite()
	}
	return nil
}

// handleConnection reads and parses one request header, then either
// dispatches to the handler or responds Invalid and shuts the connection
// down itself, per step 5 of §4.H. connID correlates every log line for
// this connection, from accept through however the handler disposes of it.
func (s *Server) handleConnection(conn net.Conn, connID string) {
	clog := s.log.With(log.Fields{"conn_id": connID})

	if s.idleTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.idleTimeout)); err != nil {
			clog.WithError(err).Warn("set idle deadline")
		}
	}

	tok := protocol.NewTokenizer(s.table)

	buf := make([]byte, 1024)
	for !tok.Done() && !tok.Invalid() {
		n, err := conn.Read(buf)
		if n > 0 {
			if _, perr := tok.Process(buf[:n]); perr != nil {
				break
			}
		}
		if err != nil {
			break
		}
	}

	if tok.Invalid() || !tok.Done() {
		clog.WithError(liberr.ErrorGetfileInvalidHeader.Error(nil)).Debug("rejecting malformed request")
		s.rejectInvalid(conn, clog)
		return
	}

	req, err := protocol.ParseRequest(tok)
	if err != nil {
		clog.WithError(liberr.ErrorGetfileInvalidHeader.Error(err)).Debug("rejecting malformed request")
		s.rejectInvalid(conn, clog)
		return
	}

	if s.idleTimeout > 0 {
		if err := conn.SetReadDeadline(time.Time{}); err != nil {
			clog.WithError(err).Warn("clear idle deadline")
		}
	}

	ctx := connctx.New(conn)
	s.handler.Handle(ctx, req.Path)
}

// rejectInvalid sends an Invalid response and performs the same
// half-close/drain/close shutdown discipline the ConnectionContext uses,
// for requests that never made it far enough to get a ConnectionContext.
func (s *Server) rejectInvalid(conn net.Conn, clog *log.Logger) {
	ctx := connctx.New(conn)
	if err := ctx.SendHeader(protocol.StatusInvalid, 0); err != nil {
		clog.WithError(err).Warn("send invalid response")
	}
}
