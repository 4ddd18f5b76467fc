package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/five82/auqa/internal/auqa"
	"github.com/five82/auqa/internal/export"
	"github.com/five82/auqa/internal/logging"
	"github.com/five82/auqa/internal/playback"
	"github.com/five82/auqa/internal/report"
	"github.com/five82/auqa/internal/session"
	"github.com/five82/auqa/internal/state"
)

// ErrNothingExported is returned when a bulk export produced no reports.
var ErrNothingExported = errors.New("no reports could be exported")

// audioExtensions are the upload types the server accepts.
var audioExtensions = []string{".wav", ".mp3", ".flac", ".ogg", ".m4a"}

// UnsupportedFileError rejects an upload before it is sent.
type UnsupportedFileError struct {
	Path string
}

func (e *UnsupportedFileError) Error() string {
	return fmt.Sprintf("%s is not a supported audio file (%s)", filepath.Base(e.Path), strings.Join(audioExtensions, ", "))
}

// ExportResult is the outcome of a bulk export.
type ExportResult = export.Result

// Deps are the collaborators of an Engine.
type Deps struct {
	API     auqa.API
	Clock   *session.Clock
	Player  playback.Player
	Writer  *export.Writer
	Logger  *slog.Logger
	Now     func() time.Time
	After   func(time.Duration) <-chan time.Time
	Cadence Cadence
	// QueueEvery is the queue-status poll interval.
	QueueEvery time.Duration
	// Settle is the delay before reloading a reprocessed report.
	Settle time.Duration
}

// Engine keeps the local view consistent with the server and is the only
// surface the presentation layer talks to.
type Engine struct {
	api     auqa.API
	clock   *session.Clock
	store   *state.Store
	queue   *QueueSync
	files   *FilesSync
	reports *ReportLoader
	player  *playback.Controller
	writer  *export.Writer
	logger  *slog.Logger
	now     func() time.Time
	cadence Cadence
	every   time.Duration

	queueSched *Scheduler
	filesSched *Scheduler

	mu      sync.Mutex
	bg      context.Context
	cancel  context.CancelFunc
	started bool
}

// NewEngine builds an engine from deps. Nothing runs until Start.
func NewEngine(deps Deps) *Engine {
	logger := logging.OrNop(deps.Logger)
	store := &state.Store{}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	clock := deps.Clock
	if clock == nil {
		clock = session.NewClock(nil, session.WithLogger(logger))
	}
	writer := deps.Writer
	if writer == nil {
		writer = export.NewWriter(".", 0, export.WithLogger(logger))
	}
	player := deps.Player
	if player == nil {
		player = noPlayer{}
	}
	every := deps.QueueEvery
	if every <= 0 {
		every = 2 * time.Second
	}

	e := &Engine{
		api:        deps.API,
		clock:      clock,
		store:      store,
		writer:     writer,
		logger:     logger.With(logging.Component("engine")),
		now:        now,
		cadence:    deps.Cadence,
		every:      every,
		queueSched: NewScheduler(deps.After),
		filesSched: NewScheduler(deps.After),
	}
	e.bg, e.cancel = context.WithCancel(context.Background())
	e.reports = NewReportLoader(deps.API, store, logger)
	e.queue = NewQueueSync(deps.API, clock, store, logger)
	e.files = NewFilesSync(deps.API, store, e.reports, deps.Settle, logger)
	e.player = playback.NewController(player, e.clipSource, logger)
	return e
}

// Start launches the queue and file-list lines.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	e.queueSched.Start(ctx, Every(e.every), e.queue.Tick)
	e.filesSched.Start(ctx, func() time.Duration {
		return e.cadence.FilesInterval(e.store.Active())
	}, e.files.Tick)
	e.logger.Info("engine started",
		slog.Duration("queue_every", e.every),
		slog.Duration("files_active", e.cadence.Active),
		slog.Duration("files_idle", e.cadence.Idle))
}

// Stop tears the engine down. Responses still in flight are discarded and
// any playing clip is stopped.
func (e *Engine) Stop() {
	e.queueSched.Stop()
	e.filesSched.Stop()
	e.store.Stop()
	e.player.Close()
	e.cancel()
}

// Snapshot returns the full local view.
func (e *Engine) Snapshot() state.Snapshot {
	return e.store.Snapshot()
}

// QueueStatus returns the latest queue counts.
func (e *Engine) QueueStatus() auqa.QueueStatus {
	return e.store.Snapshot().Queue.Status
}

// Files returns the held processed-file list.
func (e *Engine) Files() []auqa.ProcessedFile {
	return e.store.Snapshot().Files.Files
}

// SelectedReport returns the selected file's report, or nil.
func (e *Engine) SelectedReport() *report.Canonical {
	return e.store.Snapshot().Selection.Report
}

// Report fetches and normalizes the report for id without selecting it.
func (e *Engine) Report(ctx context.Context, id string) (report.Canonical, error) {
	return e.reports.Fetch(ctx, id)
}

// Anchor returns the session anchor.
func (e *Engine) Anchor() int64 {
	return e.clock.Anchor()
}

// Select selects id, or deselects it when it is already selected, and
// loads its report in the background. Playback stops when the selection
// changes.
func (e *Engine) Select(id string) {
	e.player.Stop()
	gen, selected := e.store.Select(id)
	if !selected {
		return
	}
	e.logger.Info("file selected", logging.FieldFileID, id)
	go e.reports.Load(e.bg, id, gen)
}

// Refresh reloads the file list now. It backs the retry action after a
// failed initial load.
func (e *Engine) Refresh(ctx context.Context) error {
	return e.files.Refresh(ctx)
}

// ResetSession starts a new session anchor and clears the queue counts in
// the same step.
func (e *Engine) ResetSession() int64 {
	var anchor int64
	e.store.ResetQueueIf(func() bool {
		anchor = e.clock.Reset()
		return true
	})
	e.logger.Info("session reset", slog.Int64(logging.FieldAnchor, anchor))
	return anchor
}

// TogglePlayback plays or stops the clip for key within the selected
// report.
func (e *Engine) TogglePlayback(ctx context.Context, key playback.Key) error {
	return e.player.Toggle(ctx, key)
}

// Playing returns the clip being played, if any.
func (e *Engine) Playing() (playback.Key, bool) {
	return e.player.Playing()
}

// ExportOne writes the report for id and returns the file path.
func (e *Engine) ExportOne(ctx context.Context, id string) (string, error) {
	c, err := e.reports.Fetch(ctx, id)
	if err != nil {
		return "", fmt.Errorf("fetch report: %w", err)
	}
	paths, err := e.writer.WriteAll(ctx, []export.Document{{
		FileID: id,
		Name:   e.exportName(id, c, 0),
		Body:   export.Render(c, e.now()),
	}})
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// ExportMany asks the server for several reports and writes one file per
// returned report. Ids the server failed on are listed in the result and do
// not stop the others.
func (e *Engine) ExportMany(ctx context.Context, ids []string) (ExportResult, error) {
	resp, err := e.api.ExportReports(ctx, ids)
	if err != nil {
		return ExportResult{}, err
	}
	result := ExportResult{Failed: resp.Errors}
	if len(resp.Errors) > 0 {
		e.logger.Warn("some reports could not be exported", slog.Int("failed", len(resp.Errors)))
	}
	if len(resp.Reports) == 0 {
		return result, ErrNothingExported
	}

	generated := e.now()
	docs := make([]export.Document, 0, len(resp.Reports))
	for i, item := range resp.Reports {
		c := report.NormalizeJSON(item.Report, e.fileName(item.FileID, i))
		docs = append(docs, export.Document{
			FileID: item.FileID,
			Name:   e.exportName(item.FileID, c, i),
			Body:   export.Render(c, generated),
		})
	}
	result.Written, err = e.writer.WriteAll(ctx, docs)
	if err != nil {
		return result, err
	}
	e.logger.Info("reports exported", slog.Int("written", len(result.Written)))
	return result, nil
}

// Delete removes files on the server, reloads the list and clears the
// selection when the selected file is gone.
func (e *Engine) Delete(ctx context.Context, ids []string) (auqa.DeleteResponse, error) {
	resp, err := e.api.DeleteFiles(ctx, ids)
	if err != nil {
		return auqa.DeleteResponse{}, err
	}
	if e.store.ClearSelectionIf(resp.Deleted) {
		e.player.Stop()
	}
	e.logger.Info("files deleted", slog.Int("requested", len(ids)), slog.Int("deleted", len(resp.Deleted)))
	if err := e.files.Refresh(ctx); err != nil {
		e.logger.Warn("file list reload after delete failed", logging.Error(err))
	}
	return resp, nil
}

// Upload sends an audio file for analysis and reloads the list. Processing
// happens later and shows up through the file-list poll.
func (e *Engine) Upload(ctx context.Context, path string) (auqa.UploadResponse, error) {
	if !IsAudioFile(path) {
		return auqa.UploadResponse{}, &UnsupportedFileError{Path: path}
	}
	f, err := os.Open(path)
	if err != nil {
		return auqa.UploadResponse{}, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	resp, err := e.api.Upload(ctx, path, f)
	if err != nil {
		return auqa.UploadResponse{}, err
	}
	e.logger.Info("file uploaded", slog.String("name", filepath.Base(path)))
	if err := e.files.Refresh(ctx); err != nil {
		e.logger.Warn("file list reload after upload failed", logging.Error(err))
	}
	return resp, nil
}

// IsAudioFile reports whether path has an extension the server accepts.
func IsAudioFile(path string) bool {
	return slices.Contains(audioExtensions, strings.ToLower(filepath.Ext(path)))
}

func (e *Engine) clipSource(key playback.Key) (string, bool) {
	if key.ID == "" {
		return "", false
	}
	fileID, _ := e.store.Selected()
	if fileID == "" {
		return "", false
	}
	return e.api.ClipURL(fileID, key.ID), true
}

// fileName is the name shown for id: from the file list, else from its
// position in a batch.
func (e *Engine) fileName(id string, index int) string {
	for _, f := range e.store.Snapshot().Files.Files {
		if f.ID == id {
			return f.Name
		}
	}
	return fmt.Sprintf("File %d", index+1)
}

func (e *Engine) exportName(id string, c report.Canonical, index int) string {
	if strings.TrimSpace(c.File) != "" {
		return c.File
	}
	return e.fileName(id, index)
}

type noPlayer struct{}

func (noPlayer) Start(context.Context, string) (playback.Handle, error) {
	return nil, errors.New("no player configured")
}
