package logtail

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	json "github.com/goccy/go-json"
)

const levelWidth = 5

// Read returns the last maxLines lines of the file at path, or every line
// when maxLines <= 0, plus the offset just past what was read. A missing
// file yields no lines and offset 0.
func Read(path string, maxLines int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	var ring []string
	if maxLines > 0 {
		ring = make([]string, maxLines)
	}
	var all []string

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		if maxLines <= 0 {
			all = append(all, scanner.Text())
			continue
		}
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log: %w", err)
	}
	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("read log: %w", err)
	}

	if maxLines <= 0 {
		return all, offset, nil
	}
	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, offset, nil
}

// Follow calls emit for every complete line appended to path after offset
// until ctx is done. A file that shrinks is read again from the start.
func Follow(ctx context.Context, path string, offset int64, emit func(string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch log: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch log: %w", err)
	}
	target := filepath.Base(path)

	drain := func() error {
		lines, next, err := readAppended(path, offset)
		if err != nil {
			return err
		}
		offset = next
		for _, line := range lines {
			emit(line)
		}
		return nil
	}

	// Lines written between Read and Add.
	if err := drain(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := drain(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch log: %w", err)
		}
	}
}

// readAppended returns the complete lines after offset and the offset just
// past the last newline. A trailing partial line is left for the next call.
func readAppended(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, offset, nil
		}
		return nil, offset, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, offset, fmt.Errorf("stat log: %w", err)
	}
	if info.Size() < offset {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log: %w", err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, offset, fmt.Errorf("read log: %w", err)
	}

	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil, offset, nil
	}
	lines := strings.Split(string(data[:end]), "\n")
	return lines, offset + int64(end) + 1, nil
}

// Level returns the level of a client log line in console or JSON format.
func Level(line string) (slog.Level, bool) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		var record struct {
			Level string `json:"level"`
		}
		if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
			return 0, false
		}
		return ParseLevel(record.Level)
	}
	_, label, ok := splitConsole(line)
	if !ok {
		return 0, false
	}
	return ParseLevel(label)
}

// ParseLevel accepts DEBUG, INFO, WARN and ERROR in any case.
func ParseLevel(s string) (slog.Level, bool) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, false
	}
	return level, true
}

// Filter keeps lines at or above minLevel. Lines without a level follow the
// line before them.
func Filter(lines []string, minLevel slog.Level) []string {
	keep := Keeper(minLevel)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if keep(line) {
			out = append(out, line)
		}
	}
	return out
}

// Keeper applies the Filter rule one line at a time, for streamed lines.
func Keeper(minLevel slog.Level) func(string) bool {
	keep := true
	return func(line string) bool {
		if level, ok := Level(line); ok {
			keep = level >= minLevel
		}
		return keep
	}
}

var (
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	levelStyles    = map[slog.Level]lipgloss.Style{
		slog.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true),
		slog.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true),
		slog.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		slog.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	}
)

// Colorize styles the timestamp and level of a console line. Other lines
// are returned unchanged.
func Colorize(line string) string {
	ts, label, ok := splitConsole(line)
	if !ok {
		return line
	}
	level, _ := ParseLevel(label)
	style, ok := levelStyles[level]
	if !ok {
		return line
	}
	rest := line[len(ts)+1+levelWidth:]
	pad := strings.Repeat(" ", levelWidth-len(label))
	return timestampStyle.Render(ts) + " " + style.Render(label) + pad + rest
}

// splitConsole splits "2026-01-02T15:04:05Z INFO  ui: msg" into its
// timestamp and trimmed level label.
func splitConsole(line string) (string, string, bool) {
	ts, rest, ok := strings.Cut(line, " ")
	if !ok || len(rest) < levelWidth {
		return "", "", false
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		return "", "", false
	}
	label := strings.TrimSpace(rest[:levelWidth])
	if _, ok := ParseLevel(label); !ok {
		return "", "", false
	}
	return ts, label, true
}
