// Package obslog is the ambient structured logger: a thin zerolog wrapper
// shared across the factory, scheduler, and storage layer.
package obslog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds a console-writer zerolog.Logger at the given level:
// human-readable console output for dev, with NewJSON for production use.
func New(level zerolog.Level) zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// NewJSON builds a structured JSON logger writing to w.
func NewJSON(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Nop returns a logger that discards everything, for tests and library
// callers that don't want engine log noise.
func Nop() zerolog.Logger { return zerolog.Nop() }
