// Package transfer defines the Sink and Source contracts every GETFILE
// data-plane endpoint streams through (§4.F), plus the in-memory and
// filesystem-backed implementations exercised by the rest of the module.
// Making both client and server stream against the same two interfaces is
// what lets "multi-threaded server reading files" and "multi-threaded
// client writing files" share one streaming loop with different endpoints,
// per original_source/mtgf/gfserver-student.h (Source) and
// original_source/mtgf/gfclient-student.h (Sink).
package transfer

import "context"

// Source is the data-in side of a transfer: the server's view of a
// requested file, or a test double standing in for one.
type Source interface {
	// Start opens a session for path and reports the total size, if
	// known. ok is false when the path has no corresponding content (the
	// caller maps that to a FileNotFound response, never distinguishing
	// why).
	Start(ctx context.Context, path string) (session Session, size uint64, ok bool)
	// Read fills buf from session, returning the number of bytes read.
	// err == io.EOF once the session is exhausted.
	Read(session Session, buf []byte) (int, error)
	// Finish releases session after a complete, successful read.
	Finish(session Session) error
}

// Sink is the data-out side of a transfer: where a client's response body
// or a server's source content eventually lands.
type Sink interface {
	// Start opens a destination session for localPath. ok is false if
	// the destination could not be opened (e.g. unwritable path); no
	// partial destination is left behind in that case.
	Start(ctx context.Context, localPath string) (session Session, ok bool)
	// Send appends buf to session, returning the number of bytes
	// accepted. A short write without an error should not happen for the
	// implementations in this package; callers do not retry on short
	// writes.
	Send(session Session, buf []byte) (int, error)
	// Cancel aborts session: the destination is left with no observable
	// side effect (e.g. a partially-written file is removed).
	Cancel(session Session) error
	// Finish commits session: the destination becomes the final,
	// complete result of the transfer.
	Finish(session Session) error
}

// Session is the opaque handle a Sink or Source hands back from Start.
// Exactly one of Finish or Cancel must be called on it.
type Session interface{}
