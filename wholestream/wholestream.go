// Package wholestream implements a server that streams an entire
// transfer.Source to any connecting client with no request header at all
// (§2's "simple whole-stream transfer server"), and the matching client
// that reads a connection to EOF into a transfer.Sink. This is the
// degenerate case that motivates keeping the GETFILE header codec decoupled
// from the streaming loop: the same Source/Sink contracts serve both a
// header-negotiated transfer and this header-less one. Grounded on
// original_source/transfer/transferserver.c (TransferServer/TransferSource)
// and transferclient.c.
package wholestream

import (
	"context"
	"errors"
	"io"
	"net"

	"github/sabouaram/getfile/log"
	"github/sabouaram/getfile/transfer"
)

const readBufSize = 64 * 1024

// Server accepts connections and streams one Source session to each, start
// to finish, with no request negotiation.
type Server struct {
	listener net.Listener
	source   transfer.Source
	path     string
	log      *log.Logger
}

// New starts listening on addr. Every accepted connection is served the
// same path from source, since there is no request to name a different
// one.
func New(addr string, source transfer.Source, path string, logger *log.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Server{listener: ln, source: source, path: path, log: logger}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close releases the listening socket.
func (s *Server) Close() error {
	return s.listener.Close()
}

// Serve accepts and streams connections until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		if err := s.stream(conn); err != nil {
			s.log.WithError(err).Warn("wholestream connection")
		}
	}
}

func (s *Server) stream(conn net.Conn) error {
	defer conn.Close()

	session, size, ok := s.source.Start(context.Background(), s.path)
	if !ok {
		return errors.New("wholestream: source has no content for path")
	}

	buf := make([]byte, readBufSize)
	var sent uint64
	for sent < size {
		want := uint64(len(buf))
		if remaining := size - sent; remaining < want {
			want = remaining
		}
		n, err := s.source.Read(session, buf[:want])
		if n > 0 {
			if _, werr := conn.Write(buf[:n]); werr != nil {
				_ = s.source.Finish(session)
				return werr
			}
			sent += uint64(n)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			_ = s.source.Finish(session)
			return err
		}
	}

	return s.source.Finish(session)
}

// Receive connects to addr and streams the entire connection into sink at
// localPath, finishing the sink on a clean close or cancelling it on any
// read error.
func Receive(ctx context.Context, addr, localPath string, sink transfer.Sink) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	session, ok := sink.Start(ctx, localPath)
	if !ok {
		return errors.New("wholestream: sink refused to start")
	}

	buf := make([]byte, readBufSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if _, werr := sink.Send(session, buf[:n]); werr != nil {
				_ = sink.Cancel(session)
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			_ = sink.Cancel(session)
			return err
		}
	}

	return sink.Finish(session)
}
