package transfer

import (
	"bytes"
	"context"
	"sync"
)

// ByteSource is a Source over a single in-memory blob, shared by every
// session it starts. It exists to test the streaming loops in handler and
// client against a fixed payload without touching a filesystem — the
// "byte-source" the transfer end-to-end properties are phrased against.
type ByteSource struct {
	content []byte
}

// NewByteSource returns a Source that always serves content, regardless of
// the requested path.
func NewByteSource(content []byte) *ByteSource {
	return &ByteSource{content: content}
}

type byteSourceSession struct {
	r *bytes.Reader
}

func (b *ByteSource) Start(_ context.Context, _ string) (Session, uint64, bool) {
	return &byteSourceSession{r: bytes.NewReader(b.content)}, uint64(len(b.content)), true
}

func (b *ByteSource) Read(session Session, buf []byte) (int, error) {
	return session.(*byteSourceSession).r.Read(buf)
}

func (b *ByteSource) Finish(Session) error { return nil }

// MemorySink is a Sink that accumulates each session's bytes in memory,
// keyed by the localPath passed to Start, so many concurrent tasks writing
// distinct destinations can be inspected afterward without touching a
// filesystem. Grounded on ioutils/bufferReadCloser's bytes.Buffer-backed
// io.ReadWriteCloser — the same idea, specialized to the Sink shape.
type MemorySink struct {
	mu     sync.Mutex
	byPath map[string]*memorySinkSession
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{byPath: map[string]*memorySinkSession{}}
}

type memorySinkSession struct {
	buf       bytes.Buffer
	cancelled bool
	finished  bool
}

func (m *MemorySink) Start(_ context.Context, localPath string) (Session, bool) {
	s := &memorySinkSession{}
	m.mu.Lock()
	m.byPath[localPath] = s
	m.mu.Unlock()
	return s, true
}

func (m *MemorySink) Send(session Session, buf []byte) (int, error) {
	return session.(*memorySinkSession).buf.Write(buf)
}

func (m *MemorySink) Cancel(session Session) error {
	s := session.(*memorySinkSession)
	s.cancelled = true
	s.buf.Reset()
	return nil
}

func (m *MemorySink) Finish(session Session) error {
	session.(*memorySinkSession).finished = true
	return nil
}

// Result reports the final bytes written for localPath and whether the
// session was committed (Finish called, never Cancel). It returns ok=false
// if no session was ever started for localPath.
func (m *MemorySink) Result(localPath string) (data []byte, committed bool, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, present := m.byPath[localPath]
	if !present {
		return nil, false, false
	}
	return append([]byte(nil), s.buf.Bytes()...), s.finished && !s.cancelled, true
}
