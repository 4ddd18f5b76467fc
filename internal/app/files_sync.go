package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/auqa/internal/auqa"
	"github.com/five82/auqa/internal/logging"
	"github.com/five82/auqa/internal/state"
)

// Cadence holds the two file-list poll intervals.
type Cadence struct {
	Active time.Duration
	Idle   time.Duration
}

// FilesInterval picks the file-list interval for the queue activity signal.
func (c Cadence) FilesInterval(active bool) time.Duration {
	if active {
		return c.Active
	}
	return c.Idle
}

// FilesFetcher is the part of the API the file line needs.
type FilesFetcher interface {
	FetchFiles(ctx context.Context) ([]auqa.ProcessedFile, error)
}

// FilesSync polls the processed-file list and schedules a report reload
// when the selected file was reprocessed.
type FilesSync struct {
	api       FilesFetcher
	store     *state.Store
	reports   *ReportLoader
	settle    time.Duration
	afterFunc func(time.Duration, func())
	logger    *slog.Logger
}

// NewFilesSync wires a file line. settle is the delay between noticing a
// reprocess and reloading its report.
func NewFilesSync(api FilesFetcher, store *state.Store, reports *ReportLoader, settle time.Duration, logger *slog.Logger) *FilesSync {
	return &FilesSync{
		api:     api,
		store:   store,
		reports: reports,
		settle:  settle,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		logger: logging.OrNop(logger).With(logging.Component("files")),
	}
}

// Poll fetches the processed-file list.
func (f *FilesSync) Poll(ctx context.Context) ([]auqa.ProcessedFile, error) {
	return f.api.FetchFiles(ctx)
}

// Refresh polls once, records the outcome and returns the poll error.
func (f *FilesSync) Refresh(ctx context.Context) error {
	files, err := f.Poll(ctx)
	update := f.store.UpdateFiles(files, err)
	if !update.Applied {
		f.logger.Debug("file list result discarded")
		return err
	}
	if err != nil {
		return err
	}
	if update.Changed {
		f.logger.Debug("file list changed", slog.Int("files", len(files)))
	}
	if update.Reprocessed {
		f.scheduleReload(ctx, update.Selected, update.Generation)
	}
	return nil
}

// Tick is Refresh with the error absorbed.
func (f *FilesSync) Tick(ctx context.Context) {
	if err := f.Refresh(ctx); err != nil {
		f.logger.Warn("file list poll failed", logging.Error(err))
	}
}

func (f *FilesSync) scheduleReload(ctx context.Context, fileID string, gen uint64) {
	f.logger.Info("selected file reprocessed; reloading report", logging.FieldFileID, fileID)
	f.afterFunc(f.settle, func() {
		if !f.store.Alive() {
			return
		}
		if id, current := f.store.Selected(); id != fileID || current != gen {
			return
		}
		id, next := f.store.Reload()
		if id == "" {
			return
		}
		f.reports.Forget(id)
		f.reports.Load(ctx, id, next)
	})
}
