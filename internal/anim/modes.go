package anim

import (
	"log/slog"
	"time"

	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/sched"
)

// ModeConfig describes how a mode is presented and how it ends.
type ModeConfig struct {
	Animation string        // played on entry
	Duration  time.Duration // 0 means the mode lasts until replaced
	Next      pet.Mode      // mode after Duration; "" means idle
	Resume    bool          // after Duration, go back to the mode this one interrupted
}

// DefaultModes is the built-in mode table.
func DefaultModes() map[pet.Mode]ModeConfig {
	return map[pet.Mode]ModeConfig{
		pet.ModePet:   {Animation: "petting", Duration: 2500 * time.Millisecond, Resume: true},
		pet.ModeEat:   {Animation: "eat", Duration: 4 * time.Second},
		pet.ModeSwim:  {Animation: "swimStart", Duration: time.Minute},
		pet.ModeRest:  {Animation: "settle", Duration: 30 * time.Second},
		pet.ModeSleep: {Animation: "doze", Duration: 20 * time.Minute},
	}
}

// DefaultIdleEntry picks the idle-cycle step that starts from each posture.
func DefaultIdleEntry() map[pet.BaseState]string {
	return map[pet.BaseState]string{
		pet.BaseRest:  "idleRest",
		pet.BaseFloat: "idleFloat",
		pet.BaseSwim:  "idleSwim",
		pet.BaseSleep: "idleFloat", // wake up by floating
	}
}

// DirectorConfig configures mode handling.
type DirectorConfig struct {
	Modes          map[pet.Mode]ModeConfig
	IdleEntry      map[pet.BaseState]string
	SwimBurstEvery time.Duration
	SwimBurst      string // animation played by each burst
}

// Director runs the mode state machine on top of a Machine:
// idle <-> {pet, eat, rest, sleep, swim}.
type Director struct {
	machine *Machine
	sched   sched.Scheduler
	pet     Pet

	modes      map[pet.Mode]ModeConfig
	idleEntry  map[pet.BaseState]string
	burstEvery time.Duration
	burstAnim  string

	resumeTo pet.Mode
}

// NewDirector creates a director. Zero config fields take the defaults.
func NewDirector(m *Machine, s sched.Scheduler, p Pet, cfg DirectorConfig) *Director {
	if cfg.Modes == nil {
		cfg.Modes = DefaultModes()
	}
	if cfg.IdleEntry == nil {
		cfg.IdleEntry = DefaultIdleEntry()
	}
	if cfg.SwimBurstEvery <= 0 {
		cfg.SwimBurstEvery = 12 * time.Second
	}
	if cfg.SwimBurst == "" {
		cfg.SwimBurst = "swimFast"
	}
	return &Director{
		machine:    m,
		sched:      s,
		pet:        p,
		modes:      cfg.Modes,
		idleEntry:  cfg.IdleEntry,
		burstEvery: cfg.SwimBurstEvery,
		burstAnim:  cfg.SwimBurst,
		resumeTo:   pet.ModeIdle,
	}
}

// Machine returns the underlying layer machine.
func (d *Director) Machine() *Machine {
	return d.machine
}

// EnterMode switches mode. Entering idle starts the idle cycle; entering any other
// mode cancels the idle cycle, any pending mode reset and swim bursts, clears the
// overlay and plays the mode's animation.
func (d *Director) EnterMode(m pet.Mode) {
	if m == pet.ModeIdle {
		d.enterIdle()
		return
	}

	cfg, ok := d.modes[m]
	if !ok {
		slog.Warn("anim: no mode config", "mode", m)
		return
	}

	prev := d.pet.Mode()
	if prev != m {
		if cfg.Resume {
			// An overlay mode interrupting another overlay mode keeps the older target.
			if !d.modes[prev].Resume {
				d.resumeTo = prev
			}
		} else {
			d.resumeTo = pet.ModeIdle
		}
	}

	d.sched.Cancel(sched.KeyModeReset)
	d.sched.Cancel(sched.KeySwimBurst)
	d.machine.Cancel(LayerBase)
	d.machine.Clear(LayerOverlay)

	d.pet.SetMode(m)
	d.machine.Play(cfg.Animation)

	if m == pet.ModeSwim {
		d.armSwimBurst()
	}

	if cfg.Duration > 0 {
		next := cfg.Next
		if cfg.Resume {
			next = d.resumeTo
		}
		if next == "" {
			next = pet.ModeIdle
		}
		d.sched.Schedule(sched.KeyModeReset, cfg.Duration, func() { d.EnterMode(next) })
	}
}

// Restore re-enters a mode read back from storage. Overlay modes cannot be resumed
// without their interrupted mode, so they fall back to idle.
func (d *Director) Restore(m pet.Mode) {
	if cfg, ok := d.modes[m]; !ok || cfg.Resume {
		m = pet.ModeIdle
	}
	d.EnterMode(m)
}

func (d *Director) enterIdle() {
	d.sched.Cancel(sched.KeyModeReset)
	d.sched.Cancel(sched.KeySwimBurst)
	d.resumeTo = pet.ModeIdle
	d.pet.SetMode(pet.ModeIdle)

	entry, ok := d.idleEntry[d.pet.BaseState()]
	if !ok {
		entry = d.idleEntry[pet.BaseFloat]
	}
	d.machine.Play(entry)
}

func (d *Director) armSwimBurst() {
	d.sched.Schedule(sched.KeySwimBurst, d.burstEvery, func() {
		if d.pet.Mode() != pet.ModeSwim {
			return
		}
		d.machine.Play(d.burstAnim)
		d.armSwimBurst()
	})
}
