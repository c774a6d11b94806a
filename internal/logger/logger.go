// Package logger sets up the application's leveled logger. Each line carries
// a timestamp, the level and the caller's file:line.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLevel maps debug, info, warn (or warning) and error, in any case, to
// a level. Anything else is info.
func ParseLevel(s string) log.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Logger is a charm logger that may own its output file. It is safe for
// concurrent use.
type Logger struct {
	*log.Logger
	file *os.File
}

// New creates a logger writing to w. Colors are used when w is a terminal.
func New(level string, w io.Writer) *Logger {
	return &Logger{
		Logger: log.NewWithOptions(w, log.Options{
			Level:           ParseLevel(level),
			ReportTimestamp: true,
			ReportCaller:    true,
		}),
	}
}

// NewFileLogger creates a logger appending to path, creating its directory.
// The terminal belongs to the renderer while the app runs, so interactive
// sessions log here.
func NewFileLogger(level, path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := New(level, f)
	l.file = f
	return l, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
