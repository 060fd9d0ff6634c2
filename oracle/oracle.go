// Package oracle provides the "content oracle" the server hands requests
// to: a mapping from request path to content. spec.md places this out of
// scope as an external collaborator (§1 Non-goals); this is the minimal
// implementation original_source/mtgf/gfserver-student.h and gf-student.h
// gesture at (content_source_init(Source*)) without inventing behavior the
// retrieved sources never specified — a root directory whose files are
// addressed by request path, satisfying transfer.Source.
package oracle

import (
	"bytes"
	"context"

	"github/sabouaram/getfile/transfer"
)

// New returns a Source that serves path as root+path from disk, reusing
// transfer.FileSource directly rather than re-implementing the same
// root-relative lookup a second time.
func New(root string) transfer.Source {
	return transfer.NewFileSource(root)
}

// NewInMemory returns a Source backed by a fixed path->content map, for
// tests that want a content oracle without touching a filesystem.
func NewInMemory(content map[string][]byte) transfer.Source {
	return &memoryOracle{content: content}
}

// memoryOracle is a transfer.Source over a fixed set of in-memory blobs,
// keyed by request path exactly as the on-disk oracle keys by
// root-relative path.
type memoryOracle struct {
	content map[string][]byte
}

type memoryOracleSession struct {
	r *bytes.Reader
}

func (m *memoryOracle) Start(_ context.Context, path string) (transfer.Session, uint64, bool) {
	blob, ok := m.content[path]
	if !ok {
		return nil, 0, false
	}
	return &memoryOracleSession{r: bytes.NewReader(blob)}, uint64(len(blob)), true
}

func (m *memoryOracle) Read(session transfer.Session, buf []byte) (int, error) {
	return session.(*memoryOracleSession).r.Read(buf)
}

func (m *memoryOracle) Finish(transfer.Session) error {
	return nil
}
