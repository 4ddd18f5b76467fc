// Package logtail reads the client log file for the logs command.
//
// Read returns the last N lines with a single pass over the file using a
// ring buffer, so memory stays proportional to N rather than the file size.
// Follow then watches the file's directory with fsnotify and emits lines
// appended after the offset Read returned; watching the directory keeps
// working when the file is created after the watch starts.
//
// Level and Filter understand both handler formats the logging package
// writes: console lines ("2026-01-02T15:04:05Z WARN  engine: msg k=v") and
// JSON records with a "level" field. Colorize only touches console lines.
package logtail
