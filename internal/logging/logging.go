// Package logging builds the process logger: human-readable or JSON output
// on a console writer, optionally mirrored as JSON to an append-only file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	Level   string    // debug|info|warn|error
	Format  string    // text|json
	File    string    // Optional log file, always JSON
	Out     io.Writer // Console destination; defaults to os.Stderr
	NoColor bool      // Disables ANSI colors in text output
}

// Logger is a zerolog.Logger that owns its log file.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New creates a Logger.
func New(opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: opts.NoColor}
	}

	l := &Logger{}
	writers := []io.Writer{out}
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		writers = append(writers, f)
	}

	l.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return l, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}
