// Package logging builds the shared writer behind the per-component
// loggers.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects where component logs go.
type Options struct {
	// File, when set, receives logs through a rotating writer.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Quiet discards logs that would go to stderr. A log file is always
	// written.
	Quiet bool
}

// Sink owns the log destination. Close releases a rotating file.
type Sink struct {
	w      io.Writer
	closer io.Closer
}

// Open creates the log destination described by opts.
func Open(opts Options) (*Sink, error) {
	if opts.File == "" {
		if opts.Quiet {
			return &Sink{w: io.Discard}, nil
		}
		return &Sink{w: os.Stderr}, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, err
	}
	lj := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	return &Sink{w: lj, closer: lj}, nil
}

// Writer returns the underlying writer.
func (s *Sink) Writer() io.Writer { return s.w }

// Logger returns a logger tagged "[component] ".
func (s *Sink) Logger(component string) *log.Logger {
	return log.New(s.w, "["+component+"] ", log.LstdFlags)
}

// Close flushes and closes a rotating file; it is a no-op otherwise.
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
