package player

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicx/internal/shared"
)

// Backend produces audio for a URL.
//
// Play returns a channel that receives the result once playback of that URL ends, whether it finished or was stopped.
type Backend interface {
	Play(ctx context.Context, url string) (<-chan error, error)
	Pause() error
	Resume() error
	Stop() error
}

// ExecBackend plays each song by running an external player such as mpv with the audio URL as its last argument.
type ExecBackend struct {
	command string
	args    []string
	logger  *log.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewExecBackend creates a backend that runs command with args.
func NewExecBackend(command string, args []string, logger *log.Logger) *ExecBackend {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ExecBackend{command: command, args: args, logger: logger}
}

// Available reports whether the player command can be found on PATH.
func (b *ExecBackend) Available() error {
	if _, err := exec.LookPath(b.command); err != nil {
		return fmt.Errorf("%w: audio player %q not found: %v", shared.ErrServiceUnavailable, b.command, err)
	}
	return nil
}

func (b *ExecBackend) Play(ctx context.Context, url string) (<-chan error, error) {
	if url == "" {
		return nil, shared.ErrNoAudio
	}
	if err := b.Available(); err != nil {
		return nil, err
	}
	if err := b.Stop(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	cmd := exec.CommandContext(ctx, b.command, append(append([]string{}, b.args...), url)...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("could not start %s: %w", b.command, err)
	}
	b.cmd = cmd
	b.logger.Debug("player started", "command", b.command, "pid", cmd.Process.Pid, "url", url)

	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()

		b.mu.Lock()
		if b.cmd == cmd {
			b.cmd = nil
		}
		b.mu.Unlock()

		done <- err
		close(done)
	}()
	return done, nil
}

func (b *ExecBackend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cmd == nil {
		return nil
	}
	return suspend(b.cmd.Process)
}

func (b *ExecBackend) Resume() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cmd == nil {
		return nil
	}
	return resume(b.cmd.Process)
}

// Stop kills the running player, if any.
func (b *ExecBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cmd == nil {
		return nil
	}

	proc := b.cmd.Process
	b.cmd = nil
	_ = resume(proc)
	if err := proc.Kill(); err != nil && !errors.Is(err, errProcessDone) {
		b.logger.Error("error terminating player", "pid", proc.Pid, "error", err)
		return err
	}
	return nil
}
