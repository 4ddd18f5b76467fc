package app

import (
	"context"
	"log/slog"

	"github.com/five82/auqa/internal/logging"
	"github.com/five82/auqa/internal/report"
	"github.com/five82/auqa/internal/state"
	"golang.org/x/sync/singleflight"
)

// ReportFetcher is the part of the API the report loader needs.
type ReportFetcher interface {
	FetchReport(ctx context.Context, fileID string) ([]byte, error)
}

// ReportLoader fetches and normalizes reports. Concurrent requests for the
// same file share one fetch.
type ReportLoader struct {
	api    ReportFetcher
	store  *state.Store
	group  singleflight.Group
	logger *slog.Logger
}

// NewReportLoader returns a loader writing into store.
func NewReportLoader(api ReportFetcher, store *state.Store, logger *slog.Logger) *ReportLoader {
	return &ReportLoader{
		api:    api,
		store:  store,
		logger: logging.OrNop(logger).With(logging.Component("reports")),
	}
}

// Fetch returns the canonical report for fileID.
func (l *ReportLoader) Fetch(ctx context.Context, fileID string) (report.Canonical, error) {
	v, err, _ := l.group.Do(fileID, func() (any, error) {
		data, err := l.api.FetchReport(ctx, fileID)
		if err != nil {
			return nil, err
		}
		return report.NormalizeJSON(data, l.fileName(fileID)), nil
	})
	if err != nil {
		return report.Canonical{}, err
	}
	c := v.(report.Canonical)
	for _, g := range c.Groups {
		if !g.ParamsAgree() {
			l.logger.Debug("detection params differ within group",
				logging.FieldFileID, fileID, slog.String("type", g.Type))
		}
	}
	return c, nil
}

// Forget drops any in-flight fetch for fileID so the next Fetch hits the
// server.
func (l *ReportLoader) Forget(fileID string) {
	l.group.Forget(fileID)
}

// Load fetches fileID and applies it to the selection made at generation
// gen. A failed load applies an empty report.
func (l *ReportLoader) Load(ctx context.Context, fileID string, gen uint64) {
	c, err := l.Fetch(ctx, fileID)
	if err != nil {
		l.logger.Warn("report load failed", logging.FieldFileID, fileID, logging.Error(err))
		c = report.Normalize(report.Legacy{}, l.fileName(fileID))
	}
	if !l.store.ApplyReport(gen, &c) {
		l.logger.Debug("report discarded; selection moved on", logging.FieldFileID, fileID)
	}
}

func (l *ReportLoader) fileName(fileID string) string {
	for _, f := range l.store.Snapshot().Files.Files {
		if f.ID == fileID {
			return f.Name
		}
	}
	return fileID
}
