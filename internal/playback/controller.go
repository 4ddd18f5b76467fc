package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/five82/auqa/internal/logging"
)

// ErrNoClip is returned when a key has no playable clip.
var ErrNoClip = errors.New("no clip for detection")

// ErrClosed is returned by Toggle after Close.
var ErrClosed = errors.New("playback controller closed")

// Key identifies one detection instance.
type Key struct {
	Type string
	ID   string
}

func (k Key) String() string {
	return k.Type + "#" + k.ID
}

// Handle is one running clip.
type Handle interface {
	// Stop halts playback. It is safe to call more than once.
	Stop()
	// Done yields once when playback ends, nil on natural end or Stop.
	Done() <-chan error
}

// Player starts clips.
type Player interface {
	Start(ctx context.Context, source string) (Handle, error)
}

// Resolver maps a key to a playable source; false means no clip exists.
type Resolver func(Key) (string, bool)

// PlaybackError wraps a clip that failed to start or play.
type PlaybackError struct {
	Key Key
	Err error
}

func (e *PlaybackError) Error() string {
	return "play " + e.Key.String() + ": " + e.Err.Error()
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}

// Controller plays at most one clip at a time.
type Controller struct {
	mu      sync.Mutex
	player  Player
	resolve Resolver
	logger  *slog.Logger

	current *active
	seq     uint64
	closed  bool
}

type active struct {
	key    Key
	handle Handle
	seq    uint64
}

// NewController returns an idle controller.
func NewController(player Player, resolve Resolver, logger *slog.Logger) *Controller {
	return &Controller{
		player:  player,
		resolve: resolve,
		logger:  logging.OrNop(logger).With(logging.Component("playback")),
	}
}

// Toggle stops key if it is playing; otherwise it stops whatever is playing
// and starts key.
func (c *Controller) Toggle(ctx context.Context, key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.current != nil {
		same := c.current.key == key
		c.stopLocked()
		if same {
			return nil
		}
	}

	source, ok := c.resolve(key)
	if !ok {
		return ErrNoClip
	}
	handle, err := c.player.Start(ctx, source)
	if err != nil {
		perr := &PlaybackError{Key: key, Err: err}
		c.logger.Warn("clip playback failed", slog.String("clip", key.String()), logging.Error(err))
		return perr
	}

	c.seq++
	c.current = &active{key: key, handle: handle, seq: c.seq}
	c.logger.Info("clip playing", slog.String("clip", key.String()))
	go c.watch(c.current)
	return nil
}

// Playing returns the playing key, if any.
func (c *Controller) Playing() (Key, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Key{}, false
	}
	return c.current.key, true
}

// Stop halts any playing clip.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Close stops playback and rejects further toggles.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.closed = true
}

func (c *Controller) stopLocked() {
	if c.current == nil {
		return
	}
	c.current.handle.Stop()
	c.current = nil
}

func (c *Controller) watch(a *active) {
	err := <-a.handle.Done()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.seq != a.seq {
		return
	}
	c.current = nil
	if err != nil {
		c.logger.Warn("clip playback failed", slog.String("clip", a.key.String()), logging.Error(err))
		return
	}
	c.logger.Debug("clip finished", slog.String("clip", a.key.String()))
}
