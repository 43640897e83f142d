// Package shell plays sound files by running an external command.
package shell

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/moorebrett0/deskpet/internal/audio"
)

// Player runs a command such as "paplay" or "afplay" once per sound. Each sound
// file has at most one live process unless PlayOptions.Overlap is set.
type Player struct {
	command string
	args    []string
	timeout time.Duration

	mu       sync.Mutex
	seq      uint64
	running  map[string]map[uint64]context.CancelFunc
	finished func(path string)
}

// New creates a player from a command line like "paplay --volume=40000". The file
// path is appended as the last argument. timeout bounds a single playback.
func New(commandLine string, timeout time.Duration) (*Player, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty player command")
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, fmt.Errorf("player command %q: %w", fields[0], err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Player{
		command: fields[0],
		args:    fields[1:],
		timeout: timeout,
		running: make(map[string]map[uint64]context.CancelFunc),
	}, nil
}

// PlayFile implements audio.Player. It returns once the process has started.
func (p *Player) PlayFile(path string, opts audio.PlayOptions) error {
	if !opts.Overlap {
		p.StopFile(path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)

	// Registered before the process starts so that a replaced process exiting
	// meanwhile does not report the file as finished.
	p.mu.Lock()
	p.seq++
	id := p.seq
	if p.running[path] == nil {
		p.running[path] = make(map[uint64]context.CancelFunc)
	}
	p.running[path][id] = cancel
	p.mu.Unlock()

	args := append(append([]string{}, p.args...), path)
	cmd := exec.CommandContext(ctx, p.command, args...)
	if err := cmd.Start(); err != nil {
		cancel()
		p.mu.Lock()
		delete(p.running[path], id)
		if len(p.running[path]) == 0 {
			delete(p.running, path)
		}
		p.mu.Unlock()
		return fmt.Errorf("start %s: %w", p.command, err)
	}

	go func() {
		err := cmd.Wait()
		cancel()
		if ctx.Err() == context.DeadlineExceeded {
			slog.Warn("shell: playback timed out", "path", path, "timeout", p.timeout)
		} else if err != nil && ctx.Err() == nil {
			slog.Debug("shell: playback failed", "path", path, "err", err)
		}
		p.forget(path, id)
	}()
	return nil
}

// StopFile implements audio.Player by killing every process playing path.
func (p *Player) StopFile(path string) error {
	p.mu.Lock()
	cancels := p.running[path]
	delete(p.running, path)
	p.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return nil
}

// Playing reports how many processes are playing path.
func (p *Player) Playing(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.running[path])
}

// OnFinished registers fn to run once the last process playing a file exits,
// whether it ended on its own or was stopped. fn runs on a background goroutine.
func (p *Player) OnFinished(fn func(path string)) {
	p.mu.Lock()
	p.finished = fn
	p.mu.Unlock()
}

func (p *Player) forget(path string, id uint64) {
	p.mu.Lock()
	procs := p.running[path]
	delete(procs, id)
	idle := len(procs) == 0
	if idle {
		delete(p.running, path)
	}
	fn := p.finished
	p.mu.Unlock()

	if idle && fn != nil {
		fn(path)
	}
}
