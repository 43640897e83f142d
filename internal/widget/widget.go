// Package widget assembles one pet: its state, the drift clock, the action rules,
// the animation layers and the ambient cue, persisted through a storage adapter.
package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/moorebrett0/deskpet/internal/anim"
	"github.com/moorebrett0/deskpet/internal/audio"
	"github.com/moorebrett0/deskpet/internal/cue"
	"github.com/moorebrett0/deskpet/internal/drift"
	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/rules"
	"github.com/moorebrett0/deskpet/internal/sched"
	"github.com/moorebrett0/deskpet/internal/storage"
)

// HappinessBar is the stat-bar name used for happiness.
const HappinessBar = "happiness"

// UI is everything the widget draws on.
type UI interface {
	anim.Renderer
	rules.UI
	SetStat(name string, value int)
}

// Config wires a Controller. Zero fields take each component's defaults.
type Config struct {
	Animations map[string]anim.Animation
	Director   anim.DirectorConfig
	Drift      drift.Config
	Rules      rules.Config
	Cue        cue.Config
	Presence   cue.PresenceUpdater
}

// caller runs fn on the scheduler's goroutine and waits for it.
type caller interface {
	Call(ctx context.Context, fn func()) error
}

// Controller is the single entry point into a running pet. Apart from Act and
// Snapshot, its methods must be called from the scheduler's goroutine.
type Controller struct {
	state *pet.PetState
	sched sched.Scheduler
	store storage.Adapter
	ui    UI
	audio audio.Manager

	director *anim.Director
	drift    *drift.Engine
	rules    *rules.Engine
	cue      *cue.Scheduler
}

// New hydrates the pet from store and builds its components. A missing or
// unreadable blob leaves the pet at its defaults.
func New(store storage.Adapter, s sched.Scheduler, ui UI, am audio.Manager, cfg Config) (*Controller, error) {
	if store == nil {
		return nil, errors.New("widget: storage adapter is required")
	}
	if cfg.Animations == nil {
		anims, err := anim.LoadCatalog("")
		if anims == nil {
			return nil, fmt.Errorf("widget: built-in catalog: %w", err)
		}
		if err != nil {
			slog.Warn("widget: built-in catalog has problems", "err", err)
		}
		cfg.Animations = anims
	}

	c := &Controller{
		state: load(store),
		sched: s,
		store: store,
		ui:    ui,
		audio: am,
	}

	machine := anim.NewMachine(cfg.Animations, s, ui, am, c.state)
	c.director = anim.NewDirector(machine, s, c.state, cfg.Director)
	c.drift = drift.New(c.state, s, cfg.Drift)
	if cfg.Rules.SleepWindow == (pet.SleepWindow{}) {
		cfg.Rules.SleepWindow = cfg.Drift.SleepWindow
	}
	c.rules = rules.New(c.state, c.director, s, ui, cfg.Rules)
	c.cue = cue.New(c.state, s, ui, am, cfg.Presence, cfg.Cue)

	c.state.SetListener(c)
	return c, nil
}

func load(store storage.Adapter) *pet.PetState {
	blob, ok, err := store.Get(pet.StorageKey)
	if err != nil {
		slog.Warn("widget: could not read saved state, starting fresh", "err", err)
		return pet.NewPetState()
	}
	if !ok {
		return pet.NewPetState()
	}
	state, err := pet.Hydrate(blob)
	if err != nil {
		slog.Warn("widget: saved state discarded", "err", err)
	}
	return state
}

// Start catches up on missed drift, restores the saved mode and starts the
// recurring timers.
func (c *Controller) Start() {
	if hours := c.drift.ProcessBackfill(); hours > 0 {
		slog.Info("widget: caught up", "hours", hours)
	}

	snap := c.state.Snapshot()
	c.refreshStats(snap)
	c.ui.SetButtons(actionNames(), true)

	c.director.Restore(snap.Mode)
	c.drift.Start()
	c.cue.Start()
	slog.Info("widget: started", "name", snap.Name, "mood", snap.Mood, "mode", snap.Mode)
}

// Stop cancels the recurring timers. Pending animation timers die with the
// scheduler.
func (c *Controller) Stop() {
	c.drift.Stop()
	c.cue.Stop()
	c.persist()
}

// State returns the pet state.
func (c *Controller) State() *pet.PetState {
	return c.state
}

// Snapshot is safe from any goroutine.
func (c *Controller) Snapshot() pet.Snapshot {
	return c.state.Snapshot()
}

// Rules returns the action engine, for cooldown queries.
func (c *Controller) Rules() *rules.Engine {
	return c.rules
}

// Do runs an action through the rule engine.
func (c *Controller) Do(a rules.Action) error {
	return c.rules.Do(a)
}

// Act runs an action from any goroutine and describes the outcome.
func (c *Controller) Act(ctx context.Context, a rules.Action) (string, error) {
	var err error
	if callErr := c.call(ctx, func() { err = c.Do(a) }); callErr != nil {
		return "", callErr
	}
	if err != nil {
		return "", err
	}
	snap := c.state.Snapshot()
	return fmt.Sprintf("Done. Now %s, feeling %s, happiness %d.", snap.IdlePhase, snap.Mood, snap.Happiness), nil
}

// ToggleSound flips sound playback and returns the new setting. Turning sound off
// stops whatever is playing.
func (c *Controller) ToggleSound() bool {
	on := !c.state.SoundEnabled()
	c.state.SetSoundEnabled(on)
	if !on {
		if stopper, ok := c.audio.(interface{ StopAll() }); ok {
			stopper.StopAll()
		}
	}
	return on
}

// Rename sets the pet's identity.
func (c *Controller) Rename(name, speciesID string) {
	c.state.SetIdentity(name, speciesID)
}

func (c *Controller) call(ctx context.Context, fn func()) error {
	if l, ok := c.sched.(caller); ok {
		return l.Call(ctx, fn)
	}
	fn()
	return nil
}

// StatChanged implements pet.Listener.
func (c *Controller) StatChanged(stat pet.Stat, value int) {
	c.ui.SetStat(string(stat), value)
}

// Recomputed implements pet.Listener.
func (c *Controller) Recomputed(snap pet.Snapshot, levelsGained int) {
	c.ui.SetStat(HappinessBar, snap.Happiness)
	c.persist()
	if levelsGained > 0 {
		c.ui.ShowMessage(fmt.Sprintf("Level up! %s is now level %d.", displayName(snap), snap.Level))
	}
	c.cue.Reschedule()
}

// StateChanged implements pet.Listener.
func (c *Controller) StateChanged(pet.Snapshot) {
	c.persist()
}

func (c *Controller) persist() {
	blob, err := c.state.Encode()
	if err != nil {
		slog.Warn("widget: encode state failed", "err", err)
		return
	}
	if err := c.store.Set(pet.StorageKey, blob); err != nil {
		slog.Warn("widget: save state failed", "err", err)
	}
}

func (c *Controller) refreshStats(snap pet.Snapshot) {
	for _, stat := range pet.Stats {
		c.ui.SetStat(string(stat), snap.Value(stat))
	}
	c.ui.SetStat(HappinessBar, snap.Happiness)
}

func actionNames() []string {
	names := make([]string, len(rules.Order))
	for i, a := range rules.Order {
		names[i] = string(a)
	}
	return names
}

func displayName(snap pet.Snapshot) string {
	if snap.Name == "" {
		return "Your pet"
	}
	return snap.Name
}
