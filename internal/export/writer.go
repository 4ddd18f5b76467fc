package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/five82/auqa/internal/auqa"
	"github.com/five82/auqa/internal/logging"
)

// Result is the outcome of a bulk export. Written holds the paths of the
// files saved; Failed the ids the server could not report on.
type Result struct {
	Written []string
	Failed  []auqa.ExportError
}

// Document is one rendered report ready to be written.
type Document struct {
	FileID string
	Name   string
	Body   string
}

// Writer saves documents into a directory, one file each.
type Writer struct {
	dir     string
	stagger time.Duration
	logger  *slog.Logger
	sleep   func(context.Context, time.Duration) error
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the writer's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) { w.logger = logging.OrNop(logger) }
}

// WithSleep replaces the delay used between files.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(w *Writer) { w.sleep = sleep }
}

// NewWriter returns a Writer for dir that pauses stagger between files.
func NewWriter(dir string, stagger time.Duration, opts ...Option) *Writer {
	w := &Writer{
		dir:     dir,
		stagger: stagger,
		logger:  logging.NewNop(),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteAll writes docs in order and returns the written paths. It stops at
// the first failure or when ctx is cancelled; paths written so far are still
// returned.
func (w *Writer) WriteAll(ctx context.Context, docs []Document) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	paths := make([]string, 0, len(docs))
	used := make(map[string]int, len(docs))
	for i, doc := range docs {
		if i > 0 && w.stagger > 0 {
			if err := w.sleep(ctx, w.stagger); err != nil {
				return paths, err
			}
		}
		path := filepath.Join(w.dir, uniqueName(FileName(doc.Name), used))
		if err := writeFile(path, doc.Body); err != nil {
			return paths, err
		}
		w.logger.Info("report exported", logging.FieldFileID, doc.FileID, "path", path)
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path, body string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}

// uniqueName suffixes repeated names within one batch: a_report.txt,
// a_report-2.txt.
func uniqueName(name string, used map[string]int) string {
	used[name]++
	n := used[name]
	if n == 1 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s-%d%s", name[:len(name)-len(ext)], n, ext)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
