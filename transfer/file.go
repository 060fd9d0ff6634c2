package transfer

import (
	"context"
	"os"
	"path/filepath"

	"github/sabouaram/getfile/ioutils"
)

// FileSink writes each session to a path on disk, creating intermediate
// directories on demand (via ioutils.PathCheckCreate, the teacher's helper
// for exactly this) and unlinking on Cancel so a failed transfer leaves no
// partial file behind.
type FileSink struct {
	PermFile os.FileMode
	PermDir  os.FileMode
}

// NewFileSink returns a FileSink using permFile for created files and
// permDir for any intermediate directories it has to create.
func NewFileSink(permFile, permDir os.FileMode) *FileSink {
	return &FileSink{PermFile: permFile, PermDir: permDir}
}

type fileSinkSession struct {
	path string
	f    *os.File
}

func (s *FileSink) Start(_ context.Context, localPath string) (Session, bool) {
	if dir := filepath.Dir(localPath); dir != "." {
		if err := ioutils.PathCheckCreate(false, dir, s.PermFile, s.PermDir); err != nil {
			return nil, false
		}
	}
	f, err := os.OpenFile(localPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, s.PermFile)
	if err != nil {
		return nil, false
	}
	return &fileSinkSession{path: localPath, f: f}, true
}

func (s *FileSink) Send(session Session, buf []byte) (int, error) {
	return session.(*fileSinkSession).f.Write(buf)
}

func (s *FileSink) Cancel(session Session) error {
	sess := session.(*fileSinkSession)
	_ = sess.f.Close()
	return os.Remove(sess.path)
}

func (s *FileSink) Finish(session Session) error {
	return session.(*fileSinkSession).f.Close()
}

// FileSource serves files rooted at Root: a requested path "/a/b" maps to
// Root+"/a/b". It never distinguishes "missing" from "unreadable" at this
// layer — that narrowing happens one level up, in the handler, which maps
// any Start failure to FileNotFound per §7.
type FileSource struct {
	Root string
}

// NewFileSource returns a Source rooted at root.
func NewFileSource(root string) *FileSource {
	return &FileSource{Root: root}
}

type fileSourceSession struct {
	f *os.File
}

func (s *FileSource) Start(_ context.Context, path string) (Session, uint64, bool) {
	f, err := os.Open(filepath.Join(s.Root, path))
	if err != nil {
		return nil, 0, false
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, false
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, 0, false
	}
	return &fileSourceSession{f: f}, uint64(info.Size()), true
}

func (s *FileSource) Read(session Session, buf []byte) (int, error) {
	return session.(*fileSourceSession).f.Read(buf)
}

func (s *FileSource) Finish(session Session) error {
	return session.(*fileSourceSession).f.Close()
}
