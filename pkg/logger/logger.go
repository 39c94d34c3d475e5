package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text slog.Logger writing to stderr, suitable for interactive CLI use.
func New(level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// Discard returns a logger that drops all output. Intended for tests.
func Discard() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(h)
}
