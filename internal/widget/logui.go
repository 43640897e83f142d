package widget

import (
	"log/slog"
	"sync"

	"github.com/moorebrett0/deskpet/internal/anim"
)

// LogUI is the headless renderer: it logs what a real front end would draw and
// keeps the latest frame for inspection.
type LogUI struct {
	mu       sync.Mutex
	assets   map[anim.Layer]string
	stats    map[string]int
	message  string
	disabled bool
}

// NewLogUI creates an empty headless renderer.
func NewLogUI() *LogUI {
	return &LogUI{
		assets: make(map[anim.Layer]string),
		stats:  make(map[string]int),
	}
}

func (u *LogUI) SetAsset(layer anim.Layer, asset string) {
	u.mu.Lock()
	u.assets[layer] = asset
	u.mu.Unlock()
	slog.Debug("ui: asset", "layer", layer, "asset", asset)
}

func (u *LogUI) HideLayer(layer anim.Layer) {
	u.mu.Lock()
	delete(u.assets, layer)
	u.mu.Unlock()
	slog.Debug("ui: hide", "layer", layer)
}

func (u *LogUI) SetStat(name string, value int) {
	u.mu.Lock()
	u.stats[name] = value
	u.mu.Unlock()
}

func (u *LogUI) ShowMessage(text string) {
	u.mu.Lock()
	u.message = text
	u.mu.Unlock()
	slog.Info("ui: message", "text", text)
}

func (u *LogUI) SetButtons(names []string, enabled bool) {
	u.mu.Lock()
	u.disabled = !enabled
	u.mu.Unlock()
}

// Asset returns what layer currently shows.
func (u *LogUI) Asset(layer anim.Layer) string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.assets[layer]
}

// Stat returns the last value drawn for a stat bar.
func (u *LogUI) Stat(name string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.stats[name]
}

// Message returns the last message shown.
func (u *LogUI) Message() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.message
}

// ButtonsEnabled reports whether action buttons are live.
func (u *LogUI) ButtonsEnabled() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return !u.disabled
}
