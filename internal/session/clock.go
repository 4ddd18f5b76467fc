// Package session owns the session-start anchor that scopes queue counts to
// the jobs submitted since the user last reset the view.
package session

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/five82/auqa/internal/logging"
)

// AnchorKey is the KV key holding the anchor as decimal epoch seconds.
const AnchorKey = "session.start"

// KV is the durable client-local storage the clock persists into.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Clock hands out the session anchor. Once read or reset, the in-memory value
// is authoritative for the process; storage is write-through.
type Clock struct {
	mu     sync.Mutex
	kv     KV
	logger *slog.Logger
	now    func() time.Time

	anchor int64
	loaded bool
	// persisted is the last value read from or written to storage.
	persisted int64
}

// Option customises a Clock.
type Option func(*Clock)

// WithNow overrides the wall clock.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) { c.now = now }
}

// WithLogger attaches a logger for storage fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Clock) { c.logger = logger }
}

// NewClock builds a Clock over kv. A nil kv keeps the anchor in memory only.
func NewClock(kv KV, opts ...Option) *Clock {
	c := &Clock{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger).With(logging.Component("session"))
	return c
}

// Anchor returns the persisted anchor, creating and persisting one set to the
// current time when none exists.
func (c *Clock) Anchor() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.anchor
	}
	if c.kv != nil {
		if raw, ok := c.kv.Get(AnchorKey); ok {
			if v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil && v > 0 {
				c.anchor = v
				c.persisted = v
				c.loaded = true
				return c.anchor
			}
			c.logger.Warn("ignoring unparsable session anchor", slog.String("value", raw))
		}
	}
	return c.assignLocked()
}

// Reset unconditionally assigns a new anchor set to the current time and
// persists it. Anything derived from the previous anchor is stale after this
// returns.
func (c *Clock) Reset() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.assignLocked()
}

// Refresh re-reads storage and adopts a stored anchor that differs from the
// last value this clock read or wrote, which is how a running client sees a
// reset made by another process. It reports whether the anchor changed.
// Unreadable storage keeps the in-memory value, and so does a stored value
// left behind by a reset that failed to persist.
func (c *Clock) Refresh() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv == nil || !c.loaded {
		return c.anchor, false
	}
	raw, ok := c.kv.Get(AnchorKey)
	if !ok {
		return c.anchor, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 || v == c.persisted {
		return c.anchor, false
	}
	c.persisted = v
	if v == c.anchor {
		return c.anchor, false
	}
	c.anchor = v
	return v, true
}

func (c *Clock) assignLocked() int64 {
	c.anchor = c.now().Unix()
	c.loaded = true
	if c.kv != nil {
		if err := c.kv.Set(AnchorKey, strconv.FormatInt(c.anchor, 10)); err != nil {
			c.logger.Warn("session anchor not persisted; keeping in-memory value",
				logging.Error(err), slog.Int64(logging.FieldAnchor, c.anchor))
		} else {
			c.persisted = c.anchor
		}
	}
	return c.anchor
}
