// Package logging sets up structured logging for the engine, replacing
// globals.go's InfoLog/ErrorLog/DebugLog split of plain *log.Logger sinks
// with zerolog component-scoped sub-loggers, following log/zerolog.go's
// NewZerologAdapter construction.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger, writing to w with RFC3339 timestamps. Pass
// os.Stderr for interactive runs; a file handle works equally well since
// zerolog never assumes a particular sink.
func New(w io.Writer, debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Component scopes root to a named subsystem, the sub-logger equivalent of
// globals.go's separate InfoLog/ErrorLog globals: every line this logger
// emits carries a "component" field instead of being interpolated into a
// prefix string.
func Component(root zerolog.Logger, name string) zerolog.Logger {
	return root.With().Str("component", name).Logger()
}

// Tick returns a sub-logger further scoped to the current simulation tick,
// used inside tick handlers so every log line from a single event carries
// the tick it was produced on.
func Tick(l zerolog.Logger, tick int64) zerolog.Logger {
	return l.With().Int64("tick", tick).Logger()
}

// Discard is a logger that drops everything, used in tests and in library
// call sites that take a zerolog.Logger but don't want test output noise.
func Discard() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// Default opens (creating if necessary) the engine's log file the way
// utils.go's setupLogging does for its own "./logs/server.log", and returns
// a root logger writing to it alongside stderr.
func Default(path string, debug bool) (zerolog.Logger, *os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Logger{}, nil, err
	}
	return New(io.MultiWriter(os.Stderr, f), debug), f, nil
}
