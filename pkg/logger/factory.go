package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a JSON logger on stdout at info level.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewWithWriter(os.Stdout, slog.LevelInfo, extractors...)
}

// NewWithWriter creates a JSON logger writing to w at the given level.
// The CLI uses it to keep logs on stderr and command output on stdout.
func NewWithWriter(w io.Writer, level slog.Level, extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewContextHandler(h, extractors...))
}

// NewNope returns a logger that drops every record. Coordinators and hubs
// use it until a logger is configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
