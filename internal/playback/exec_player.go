package playback

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
)

// ExecPlayer plays a clip by running an external command with the clip URL
// appended, e.g. ffplay -nodisp -autoexit URL.
type ExecPlayer struct {
	command []string
}

// NewExecPlayer returns a player for command. The first element is the
// binary.
func NewExecPlayer(command []string) (*ExecPlayer, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, errors.New("player command is empty")
	}
	return &ExecPlayer{command: append([]string(nil), command...)}, nil
}

// Start launches the player. The process is detached from ctx; Stop ends it.
func (p *ExecPlayer) Start(_ context.Context, source string) (Handle, error) {
	runCtx, cancel := context.WithCancel(context.Background())
	args := append(append([]string(nil), p.command[1:]...), source)
	cmd := exec.CommandContext(runCtx, p.command[0], args...)
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", p.command[0], err)
	}

	h := &execHandle{cancel: cancel, done: make(chan error, 1)}
	go func() {
		err := cmd.Wait()
		cancel()
		if h.wasStopped() {
			err = nil
		} else if err != nil {
			err = fmt.Errorf("%s exited: %w", p.command[0], err)
		}
		h.done <- err
	}()
	return h, nil
}

type execHandle struct {
	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	done    chan error
}

func (h *execHandle) Stop() {
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
	h.cancel()
}

func (h *execHandle) Done() <-chan error {
	return h.done
}

func (h *execHandle) wasStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}
