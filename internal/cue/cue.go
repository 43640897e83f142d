// Package cue emits the pet's unsolicited sound-and-message cues, driven by how
// attached it currently feels.
package cue

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/moorebrett0/deskpet/internal/audio"
	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/sched"
	"github.com/moorebrett0/deskpet/internal/species"
)

// MinDelay is the shortest recheck interval.
const MinDelay = time.Second

// Band is an affection band.
type Band int

const (
	BandNeutral Band = iota
	BandLow          // craving attention
	BandHigh         // cheerful
)

func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandHigh:
		return "high"
	}
	return "neutral"
}

// Sink shows a cue's text.
type Sink interface {
	ShowMessage(text string)
}

// PresenceUpdater reflects the pet's mood somewhere persistent, like a chat status.
type PresenceUpdater interface {
	UpdatePresence(mood string)
}

// Config for the cue scheduler.
type Config struct {
	Low          int           `yaml:"low"`  // affection at or below this craves attention
	High         int           `yaml:"high"` // affection at or above this is cheerful
	LowDelay     time.Duration `yaml:"low_delay"`
	HighDelay    time.Duration `yaml:"high_delay"`
	NeutralDelay time.Duration `yaml:"neutral_delay"`
	LowSound     string        `yaml:"low_sound"`
	HighSound    string        `yaml:"high_sound"`
}

// DefaultConfig returns the built-in bands and delays.
func DefaultConfig() Config {
	return Config{
		Low:          45,
		High:         85,
		LowDelay:     45 * time.Second,
		HighDelay:    time.Minute,
		NeutralDelay: 3 * time.Minute,
		LowSound:     "whine",
		HighSound:    "chirp",
	}
}

// Scheduler owns the single self-rescheduling cue timer.
type Scheduler struct {
	state    *pet.PetState
	sched    sched.Scheduler
	sink     Sink
	audio    audio.Manager
	presence PresenceUpdater
	rnd      *rand.Rand
	cfg      Config

	running  bool
	band     Band
	lastMood string
}

// New creates a cue scheduler. am and presence may be nil.
func New(state *pet.PetState, s sched.Scheduler, sink Sink, am audio.Manager, presence PresenceUpdater, cfg Config) *Scheduler {
	def := DefaultConfig()
	if cfg.Low == 0 && cfg.High == 0 {
		cfg.Low, cfg.High = def.Low, def.High
	}
	if cfg.LowDelay == 0 {
		cfg.LowDelay = def.LowDelay
	}
	if cfg.HighDelay == 0 {
		cfg.HighDelay = def.HighDelay
	}
	if cfg.NeutralDelay == 0 {
		cfg.NeutralDelay = def.NeutralDelay
	}
	if cfg.LowSound == "" {
		cfg.LowSound = def.LowSound
	}
	if cfg.HighSound == "" {
		cfg.HighSound = def.HighSound
	}
	return &Scheduler{
		state:    state,
		sched:    s,
		sink:     sink,
		audio:    am,
		presence: presence,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg:      cfg,
	}
}

// BandOf classifies an affection value.
func (c *Scheduler) BandOf(affection int) Band {
	switch {
	case affection <= c.cfg.Low:
		return BandLow
	case affection >= c.cfg.High:
		return BandHigh
	}
	return BandNeutral
}

// Delay returns the recheck interval for a band, never below MinDelay.
func (c *Scheduler) Delay(b Band) time.Duration {
	d := c.cfg.NeutralDelay
	switch b {
	case BandLow:
		d = c.cfg.LowDelay
	case BandHigh:
		d = c.cfg.HighDelay
	}
	return max(d, MinDelay)
}

// Band returns the band seen at the last evaluation.
func (c *Scheduler) Band() Band {
	return c.band
}

// Start arms the timer from the current affection. No cue is emitted.
func (c *Scheduler) Start() {
	c.running = true
	snap := c.state.Snapshot()
	c.band = c.BandOf(snap.Affection)
	c.lastMood = snap.Mood
	if c.presence != nil {
		c.presence.UpdatePresence(snap.Mood)
	}
	c.arm()
}

// Stop cancels the timer.
func (c *Scheduler) Stop() {
	c.running = false
	c.sched.Cancel(sched.KeyCue)
}

// Reschedule re-evaluates after a happiness recompute and re-arms the timer with
// the current band's delay. Crossing into a new non-neutral band also emits a
// cue right away.
func (c *Scheduler) Reschedule() {
	if !c.running {
		return
	}
	snap := c.state.Snapshot()
	if snap.Mood != c.lastMood {
		c.lastMood = snap.Mood
		if c.presence != nil {
			c.presence.UpdatePresence(snap.Mood)
		}
	}

	band := c.BandOf(snap.Affection)
	if band != c.band {
		slog.Debug("cue: band changed", "from", c.band, "to", band, "affection", snap.Affection)
		c.band = band
		c.emit(snap)
	}
	c.arm()
}

func (c *Scheduler) arm() {
	c.sched.Schedule(sched.KeyCue, c.Delay(c.band), c.fire)
}

func (c *Scheduler) fire() {
	snap := c.state.Snapshot()
	c.band = c.BandOf(snap.Affection)
	c.emit(snap)
	c.arm()
}

// emit plays the cue for the current band. Sleeping pets and the neutral band
// stay quiet.
func (c *Scheduler) emit(snap pet.Snapshot) {
	if snap.Mode == pet.ModeSleep || c.band == BandNeutral {
		return
	}

	sp := species.Get(snap.SpeciesID)
	lines, sound := sp.Cues.Craving, c.cfg.LowSound
	if c.band == BandHigh {
		lines, sound = sp.Cues.Cheerful, c.cfg.HighSound
	}

	if sound != "" && c.audio != nil && snap.SoundEnabled {
		c.audio.Play(sound, audio.PlayOptions{})
	}
	if len(lines) > 0 && c.sink != nil {
		c.sink.ShowMessage(fmt.Sprintf("%s %s %s", sp.Emoji, nameOf(snap), lines[c.rnd.Intn(len(lines))]))
	}
}

func nameOf(snap pet.Snapshot) string {
	if snap.Name == "" {
		return "your pet"
	}
	return snap.Name
}
