package anim

import (
	"log/slog"

	"github.com/moorebrett0/deskpet/internal/audio"
	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/sched"
)

// Renderer shows layer assets. It is write-only: the machine never reads back.
type Renderer interface {
	SetAsset(layer Layer, asset string)
	HideLayer(layer Layer)
}

// Pet is the slice of pet state the animation code reads and writes.
type Pet interface {
	Mode() pet.Mode
	SetMode(pet.Mode)
	BaseState() pet.BaseState
	SetPosture(base pet.BaseState, idlePhase string)
	SoundEnabled() bool
}

// Machine plays animations on the base and overlay layers. Each layer has at most
// one pending chained transition; playing on a layer cancels it.
type Machine struct {
	anims map[string]Animation
	sched sched.Scheduler
	ui    Renderer
	audio audio.Manager
	pet   Pet

	asset   map[Layer]string
	playing map[Layer]string
}

// NewMachine creates a machine over a resolved animation table.
func NewMachine(anims map[string]Animation, s sched.Scheduler, ui Renderer, am audio.Manager, p Pet) *Machine {
	return &Machine{
		anims:   anims,
		sched:   s,
		ui:      ui,
		audio:   am,
		pet:     p,
		asset:   make(map[Layer]string),
		playing: make(map[Layer]string),
	}
}

func layerKey(l Layer) string {
	if l == LayerOverlay {
		return sched.KeyOverlayLayer
	}
	return sched.KeyBaseLayer
}

// Lookup returns a resolved animation.
func (m *Machine) Lookup(name string) (Animation, bool) {
	a, ok := m.anims[name]
	return a, ok
}

// Playing returns the name of the animation last started on a layer.
func (m *Machine) Playing(l Layer) string {
	return m.playing[l]
}

// Asset returns the asset currently shown on a layer, "" when hidden.
func (m *Machine) Asset(l Layer) string {
	return m.asset[l]
}

// Play starts the named animation on its layer. Unknown names are logged and leave
// the layer untouched.
func (m *Machine) Play(name string) bool {
	a, ok := m.anims[name]
	if !ok {
		slog.Warn("anim: unknown animation", "name", name)
		return false
	}

	key := layerKey(a.Layer)
	m.sched.Cancel(key)

	if a.Asset != "" && m.asset[a.Layer] != a.Asset {
		m.asset[a.Layer] = a.Asset
		if m.ui != nil {
			m.ui.SetAsset(a.Layer, a.Asset)
		}
	}
	m.playing[a.Layer] = name

	if a.Layer == LayerBase {
		m.pet.SetPosture(a.BaseState, a.IdlePhase)
	}

	if a.Sound != "" && m.audio != nil && m.pet.SoundEnabled() {
		if !m.audio.Play(a.Sound, audio.PlayOptions{Volume: a.Volume}) {
			slog.Warn("anim: sound skipped", "animation", name, "sound", a.Sound)
		}
	}

	switch {
	case a.Duration > 0 && a.Next != "":
		next := a.Next
		m.sched.Schedule(key, a.Duration, func() { m.Play(next) })
	case a.Duration > 0 && a.Layer == LayerOverlay:
		m.sched.Schedule(key, a.Duration, func() { m.Clear(LayerOverlay) })
	}
	return true
}

// Cancel drops the pending chained transition on a layer, freezing it.
func (m *Machine) Cancel(l Layer) {
	m.sched.Cancel(layerKey(l))
}

// Clear cancels a layer's pending transition and hides it.
func (m *Machine) Clear(l Layer) {
	m.sched.Cancel(layerKey(l))
	if m.asset[l] == "" && m.playing[l] == "" {
		return
	}
	m.asset[l] = ""
	m.playing[l] = ""
	if m.ui != nil {
		m.ui.HideLayer(l)
	}
}
