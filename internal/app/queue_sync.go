package app

import (
	"context"
	"log/slog"

	"github.com/five82/auqa/internal/auqa"
	"github.com/five82/auqa/internal/logging"
	"github.com/five82/auqa/internal/session"
	"github.com/five82/auqa/internal/state"
)

// QueueFetcher is the part of the API the queue line needs.
type QueueFetcher interface {
	FetchQueueStatus(ctx context.Context, since int64) (auqa.QueueStatus, error)
}

// QueueSync polls queue counts scoped to the session anchor.
type QueueSync struct {
	api    QueueFetcher
	clock  *session.Clock
	store  *state.Store
	logger *slog.Logger
}

// NewQueueSync wires a queue line.
func NewQueueSync(api QueueFetcher, clock *session.Clock, store *state.Store, logger *slog.Logger) *QueueSync {
	return &QueueSync{
		api:    api,
		clock:  clock,
		store:  store,
		logger: logging.OrNop(logger).With(logging.Component("queue")),
	}
}

// Poll fetches the queue status for the current anchor.
func (q *QueueSync) Poll(ctx context.Context) (auqa.QueueStatus, error) {
	return q.api.FetchQueueStatus(ctx, q.clock.Anchor())
}

// Tick polls once and records the outcome. Failures are logged and
// absorbed. A reset made by another process is adopted first.
func (q *QueueSync) Tick(ctx context.Context) {
	var anchor int64
	if q.store.ResetQueueIf(func() bool {
		var changed bool
		anchor, changed = q.clock.Refresh()
		return changed
	}) {
		q.logger.Info("session anchor changed on disk", slog.Int64(logging.FieldAnchor, anchor))
	}

	epoch := q.store.QueueEpoch()
	status, err := q.Poll(ctx)
	if !q.store.UpdateQueue(epoch, status, err) {
		q.logger.Debug("queue result discarded")
		return
	}
	if err != nil {
		q.logger.Warn("queue poll failed", logging.Error(err))
	}
}
