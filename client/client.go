// Package client implements a single GETFILE request/response exchange
// (§4.I): connect, send the request, tokenize the response header,
// recover the tail bytes that arrived alongside it, and stream the
// declared-size body into a transfer.Sink. Grounded on
// original_source/mtgf/gfclient-student.h's gfcrequest_t shape and
// original_source/gflib/gfclient.c's gfc_perform (the connect/send/
// tokenize-header/stream-body sequence).
package client

import (
	"context"
	"errors"
	"io"
	"net"

	liberr "github/sabouaram/getfile/errors"
	"github/sabouaram/getfile/protocol"
	"github/sabouaram/getfile/transfer"
)

// ErrTruncated is returned when the server closed the connection before
// delivering the declared body size.
var ErrTruncated = errors.New("client: connection closed before declared size was received")

// HeaderObserver is an optional, purely informational callback invoked
// with the raw header bytes once the response header has been parsed.
type HeaderObserver func(header []byte)

// Result reports what happened to one request.
type Result struct {
	Status   protocol.Status
	Expected uint64
	Received uint64
}

const scratchSize = 4096

// Request performs one GETFILE exchange against addr for path, writing the
// body (if any) into sink at localPath. observer, if non-nil, is called
// with the raw response header bytes.
func Request(ctx context.Context, addr, path, localPath string, sink transfer.Sink, observer HeaderObserver) (Result, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Result{}, err
	}
	defer conn.Close()

	raw, err := protocol.SerializeRequest(protocol.RequestGet{Path: path})
	if err != nil {
		return Result{}, err
	}
	if err := writeAll(conn, raw); err != nil {
		return Result{}, err
	}

	tok := protocol.NewTokenizer(protocol.NewTable())
	var headerBytes []byte
	var tail []byte
	buf := make([]byte, scratchSize)

	for !tok.Done() && !tok.Invalid() {
		n, rerr := conn.Read(buf)
		if n > 0 {
			consumed, perr := tok.Process(buf[:n])
			headerBytes = append(headerBytes, buf[:consumed]...)
			if perr != nil {
				// tok.Invalid() is now true; reported below.
				break
			}
			if tok.Done() && consumed < n {
				tail = append(tail, buf[consumed:n]...)
			}
		}
		if rerr != nil {
			if rerr == io.EOF && tok.Done() {
				break
			}
			return Result{}, rerr
		}
	}

	if observer != nil {
		observer(headerBytes)
	}

	if tok.Invalid() {
		return Result{Status: protocol.StatusInvalid}, liberr.ErrorGetfileInvalidHeader.Error(protocol.ErrMalformedResponse)
	}

	resp, err := protocol.ParseResponse(tok)
	if err != nil {
		return Result{Status: protocol.StatusInvalid}, liberr.ErrorGetfileInvalidHeader.Error(err)
	}

	if resp.Status != protocol.StatusOk {
		return Result{Status: resp.Status}, nil
	}

	session, ok := sink.Start(ctx, localPath)
	if !ok {
		return Result{Status: resp.Status, Expected: resp.Size}, liberr.ErrorGetfileSinkFailed.Error(nil)
	}

	var received uint64
	if len(tail) > 0 {
		n := uint64(len(tail))
		if n > resp.Size {
			n = resp.Size
		}
		if n > 0 {
			if _, werr := sink.Send(session, tail[:n]); werr != nil {
				_ = sink.Cancel(session)
				return Result{Status: resp.Status, Expected: resp.Size}, werr
			}
			received = n
		}
	}

	for received < resp.Size {
		remaining := resp.Size - received
		want := uint64(len(buf))
		if remaining < want {
			want = remaining
		}
		n, rerr := conn.Read(buf[:want])
		if n > 0 {
			if _, werr := sink.Send(session, buf[:n]); werr != nil {
				_ = sink.Cancel(session)
				return Result{Status: resp.Status, Expected: resp.Size, Received: received}, werr
			}
			received += uint64(n)
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			_ = sink.Cancel(session)
			return Result{Status: resp.Status, Expected: resp.Size, Received: received}, rerr
		}
	}

	if received != resp.Size {
		_ = sink.Cancel(session)
		return Result{Status: resp.Status, Expected: resp.Size, Received: received}, liberr.ErrorGetfileTruncatedBody.Error(ErrTruncated)
	}

	if err := sink.Finish(session); err != nil {
		return Result{Status: resp.Status, Expected: resp.Size, Received: received}, err
	}

	return Result{Status: resp.Status, Expected: resp.Size, Received: received}, nil
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
