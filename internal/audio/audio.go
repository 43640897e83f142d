// Package audio names sounds the widget may play. Decoding and mixing belong to
// the host; this package only knows which sound files exist.
package audio

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// PlayOptions are the hints passed with every play request.
type PlayOptions struct {
	Volume  float64 // 0..1; 0 means the sound's default
	Overlap bool    // allow a second copy while one is still playing
}

// Manager plays and stops named sounds. A false return means the sound is unknown
// or could not start; callers carry on without it.
type Manager interface {
	Play(name string, opts PlayOptions) bool
	Stop(name string) bool
}

// Library resolves sound names to files under a directory and hands them to a
// Player. With no Player it only tracks which sounds are "playing".
type Library struct {
	dir    string
	ext    string
	player Player

	mu      sync.Mutex
	playing map[string]bool
}

// Player is the host hook that actually emits audio.
type Player interface {
	PlayFile(path string, opts PlayOptions) error
	StopFile(path string) error
}

// finishNotifier is implemented by players that report when a file stops playing.
type finishNotifier interface {
	OnFinished(fn func(path string))
}

// NewLibrary creates a library rooted at dir. Sound "purr" maps to dir/purr+ext.
func NewLibrary(dir, ext string, player Player) *Library {
	if ext == "" {
		ext = ".ogg"
	}
	l := &Library{
		dir:     dir,
		ext:     ext,
		player:  player,
		playing: make(map[string]bool),
	}
	if n, ok := player.(finishNotifier); ok {
		n.OnFinished(l.finished)
	}
	return l
}

// Play implements Manager.
func (l *Library) Play(name string, opts PlayOptions) bool {
	path, ok := l.resolve(name)
	if !ok {
		slog.Warn("audio: sound not found", "name", name)
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.player != nil {
		if err := l.player.PlayFile(path, opts); err != nil {
			slog.Warn("audio: play failed", "name", name, "err", err)
			return false
		}
	}
	l.playing[name] = true
	slog.Debug("audio: play", "name", name, "volume", opts.Volume)
	return true
}

// Stop implements Manager.
func (l *Library) Stop(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.playing[name] {
		return false
	}
	delete(l.playing, name)
	if l.player != nil {
		if path, ok := l.resolve(name); ok {
			if err := l.player.StopFile(path); err != nil {
				slog.Warn("audio: stop failed", "name", name, "err", err)
			}
		}
	}
	return true
}

// StopAll stops every sound currently marked as playing.
func (l *Library) StopAll() {
	l.mu.Lock()
	names := make([]string, 0, len(l.playing))
	for name := range l.playing {
		names = append(names, name)
	}
	l.mu.Unlock()

	for _, name := range names {
		l.Stop(name)
	}
}

// finished clears a sound whose playback ended on its own.
func (l *Library) finished(path string) {
	name := strings.TrimSuffix(filepath.Base(path), l.ext)
	l.mu.Lock()
	delete(l.playing, name)
	l.mu.Unlock()
}

func (l *Library) resolve(name string) (string, bool) {
	if name == "" || filepath.Base(name) != name {
		return "", false
	}
	path := filepath.Join(l.dir, name+l.ext)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
