// Package logging assembles the structured slog loggers used by the AuQA
// client.
//
// It owns the console and JSON handlers, parses levels from configuration and
// routes output to stdout/stderr and log files. The TUI writes to a file only,
// since Bubble Tea owns the terminal. NewNop supplies a discard logger for
// tests and wiring code that cannot fail.
package logging
