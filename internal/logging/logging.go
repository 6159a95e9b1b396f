// Package logging builds the process logger.
//
// Commands log to stderr; the TUI logs to a file inside the session dir so
// log lines never land on the screen.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const DefaultLevel = logrus.WarnLevel

// FileName is the TUI log file inside a session dir.
const FileName = "wavetree.log"

// ParseLevel accepts logrus level names. Empty means DefaultLevel.
func ParseLevel(s string) (logrus.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultLevel, nil
	}
	return logrus.ParseLevel(s)
}

func New(w io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		TimestampFormat:  "2006-01-02T15:04:05.000Z07:00",
		QuoteEmptyFields: true,
	})
	return l
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// OpenFile appends to dir/wavetree.log. The returned closer closes the file.
func OpenFile(dir string, level logrus.Level) (*logrus.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f, nil
}
