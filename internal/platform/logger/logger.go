package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Handlers and services take
// it by injection so tests can pass a silent one.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
