// Package log wires the server and client binaries to a shared
// logrus.Logger, in the fields-based style of
// _examples/nabbar-golib/logger (Fields map + leveled entries) but trimmed
// down to what GETFILE needs: one process-wide logger, a handful of level
// names, and contextual fields per log line.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields carries structured context alongside a log line, mirroring
// logger.Fields' map-of-interface{} shape.
type Fields map[string]interface{}

// Logger wraps a logrus.Entry so every call site can attach Fields without
// reaching for logrus directly.
type Logger struct {
	entry *logrus.Entry
}

// writerHook fires every entry at or below the base logger's level into one
// io.Writer, the same Fire-into-a-writer shape as the teacher's
// hookstderr/hookstdout/hookfile hooks, trimmed of their stack-filtering,
// color, and rotation options — GETFILE's logging surface needs the fan-out,
// not the formatting knobs.
type writerHook struct {
	w io.Writer
}

func (h *writerHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Bytes()
	if err != nil {
		return err
	}
	_, err = h.w.Write(line)
	return err
}

// New builds a Logger at the given level (case-insensitive logrus level
// name; an unrecognized name falls back to info). Every writer in writers
// gets its own hook and receives every entry, mirroring the teacher's
// stdout/stderr-hook-plus-file-hook logger shape: attaching a file writer
// adds a destination, it never replaces stderr. Defaults to os.Stderr when
// called with no writers.
func New(level string, writers ...io.Writer) *Logger {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stderr}
	}

	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	for _, w := range writers {
		base.AddHook(&writerHook{w: w})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	return &Logger{entry: logrus.NewEntry(base)}
}

// With returns a Logger that includes fields on every subsequent call,
// without mutating the receiver.
func (l *Logger) With(fields Fields) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *Logger) Debug(msg string) { l.entry.Debug(msg) }
func (l *Logger) Info(msg string)  { l.entry.Info(msg) }
func (l *Logger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *Logger) Error(msg string) { l.entry.Error(msg) }

// WithError attaches err as the "error" field, matching logrus's own
// WithError convention.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

// Discard returns a Logger that drops everything, for tests and for any
// component constructed without an explicit logger.
func Discard() *Logger {
	return New("panic", io.Discard)
}
