package logging

import (
	"io"
	"log/slog"
)

// Common attribute keys.
const (
	FieldComponent = "component"
	FieldFileID    = "file_id"
	FieldRequestID = "request_id"
	FieldAnchor    = "session_anchor"
)

// Error wraps err in the conventional "error" attribute.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Component tags log lines with the emitting subsystem.
func Component(name string) slog.Attr {
	return slog.String(FieldComponent, name)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// OrNop returns logger, or a discard logger when it is nil.
func OrNop(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return logger
}
