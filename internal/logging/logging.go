// Package logging builds the server's slog logger. Log output always goes
// to stderr: under the stdio transport, stdout carries the JSON-RPC stream
// and must stay clean.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// New returns a stderr text logger. With debug enabled the level drops to
// Debug and source locations are attached.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	return slog.New(handler)
}
