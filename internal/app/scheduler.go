package app

import (
	"context"
	"sync"
	"time"
)

// IntervalPolicy returns the wait before the next tick. It is consulted
// after every tick, so it can follow changing state.
type IntervalPolicy func() time.Duration

// Every is a fixed-interval policy.
func Every(d time.Duration) IntervalPolicy {
	return func() time.Duration { return d }
}

// Scheduler runs one timer line: a tick runs to completion before the next
// wait starts, so ticks never overlap.
type Scheduler struct {
	after func(time.Duration) <-chan time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewScheduler returns an idle scheduler. after defaults to time.After.
func NewScheduler(after func(time.Duration) <-chan time.Time) *Scheduler {
	if after == nil {
		after = time.After
	}
	return &Scheduler{after: after}
}

// Start launches the loop and returns immediately; the first tick runs at
// once. Ticks get a context that is not cancelled by Stop or by ctx, so an
// in-flight request settles normally and the caller discards its result.
// Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context, policy IntervalPolicy, tick func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done

	tickCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		for {
			tick(tickCtx)
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-s.after(policy()):
			}
		}
	}()
}

// Stop ends the loop after the current tick and returns without waiting for
// it. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// Done is closed when the loop has exited. It is nil before Start.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}
