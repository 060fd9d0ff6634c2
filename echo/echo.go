// Package echo implements the trivial echo server and client described in
// §2 component A: the protocol is "every send-and-receive is a new
// connection" — a client connects, writes one message, half-closes its
// write side, and the server reads to EOF, echoes the bytes back, and
// closes. Grounded on original_source/echo/echoserver.c (es_create/es_run)
// and echoclient.c (ec_create/ec_send_and_receive); shutdown is
// cooperative cancellation via context.Context rather than
// echoserver.c's in-band shutdown_message_ sentinel, per spec.md §9's
// explicit direction not to reintroduce that string.
package echo

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github/sabouaram/getfile/log"
)

// ErrMessageTooLarge is returned when a message exceeds the configured
// max_message_length.
var ErrMessageTooLarge = errors.New("echo: message exceeds max_message_length")

// acceptTimeout bounds how long Serve waits between cancellation checks,
// the same liveness knob server.Serve uses.
const acceptTimeout = 50 * time.Millisecond

// Server accepts one connection at a time, echoing back whatever it reads
// until EOF, bounded to maxMessageLength bytes per message.
type Server struct {
	listener         *net.TCPListener
	maxMessageLength int
	log              *log.Logger
}

// New starts listening on addr.
func New(addr string, maxMessageLength int, logger *log.Logger) (*Server, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}
	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Server{listener: ln, maxMessageLength: maxMessageLength, log: logger}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close releases the listening socket.
func (s *Server) Close() error {
	return s.listener.Close()
}

// Serve accepts connections until ctx is cancelled or the listener is
// closed. Cancellation is sampled once per acceptTimeout tick, the same
// cooperative-shutdown discipline server.Serve uses.
func (s *Server) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := s.listener.SetDeadline(time.Now().Add(acceptTimeout)); err != nil {
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
			s.log.WithError(err).Warn("accept")
			continue
		}

		if err := s.handle(conn); err != nil {
			s.log.WithError(err).Warn("echo connection")
		}
	}
}

func (s *Server) handle(conn net.Conn) error {
	defer conn.Close()

	body, err := readAll(conn, s.maxMessageLength)
	if err != nil {
		return err
	}

	return writeAll(conn, body)
}

// readAll reads until EOF, bounded to maxLen bytes (a zero or negative
// maxLen means unbounded).
func readAll(r io.Reader, maxLen int) ([]byte, error) {
	if maxLen <= 0 {
		return io.ReadAll(r)
	}
	limited := io.LimitReader(r, int64(maxLen)+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if len(data) > maxLen {
		return nil, ErrMessageTooLarge
	}
	return data, nil
}

func writeAll(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// SendAndReceive opens one connection to addr, writes message, half-closes
// the write side, and returns whatever the server echoes back.
func SendAndReceive(addr string, message []byte) ([]byte, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := writeAll(conn, message); err != nil {
		return nil, err
	}
	if tc, ok := conn.(interface{ CloseWrite() error }); ok {
		if err := tc.CloseWrite(); err != nil {
			return nil, err
		}
	}

	return io.ReadAll(conn)
}
