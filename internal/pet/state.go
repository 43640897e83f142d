package pet

import (
	"sync"
	"time"
)

// Stat names one of the five mood statistics.
type Stat string

const (
	Hunger     Stat = "hunger"     // 0=full, 100=starving
	Sleepiness Stat = "sleepiness" // 0=wide awake, 100=dead on its fins
	Boredom    Stat = "boredom"    // 0=entertained, 100=climbing the glass
	Overstim   Stat = "overstim"   // 0=calm, 100=overwhelmed
	Affection  Stat = "affection"  // 0=aloof, 100=devoted
)

// Stats lists every stat in display order.
var Stats = []Stat{Hunger, Sleepiness, Boredom, Overstim, Affection}

// Valid reports whether s is a known stat.
func (s Stat) Valid() bool {
	switch s {
	case Hunger, Sleepiness, Boredom, Overstim, Affection:
		return true
	}
	return false
}

// Mode is the creature's current top-level behaviour.
type Mode string

const (
	ModeIdle  Mode = "idle"
	ModePet   Mode = "pet"
	ModeEat   Mode = "eat"
	ModeSwim  Mode = "swim"
	ModeRest  Mode = "rest"
	ModeSleep Mode = "sleep"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeIdle, ModePet, ModeEat, ModeSwim, ModeRest, ModeSleep:
		return true
	}
	return false
}

// BaseState is the creature's persistent posture.
type BaseState string

const (
	BaseRest  BaseState = "rest"
	BaseFloat BaseState = "float"
	BaseSleep BaseState = "sleep"
	BaseSwim  BaseState = "swim"

	// BaseIdle is not a posture. It is the wildcard node of the transition graph.
	BaseIdle BaseState = "idle"
)

// Valid reports whether b is a real posture.
func (b BaseState) Valid() bool {
	switch b {
	case BaseRest, BaseFloat, BaseSleep, BaseSwim:
		return true
	}
	return false
}

// Starting values for a fresh pet.
const (
	DefaultLevel     = 1
	DefaultThreshold = 80
	MaxThreshold     = 100
)

var defaultStats = map[Stat]int{
	Hunger:     25,
	Sleepiness: 20,
	Boredom:    30,
	Overstim:   15,
	Affection:  70,
}

// DefaultStat returns the starting value of stat.
func DefaultStat(stat Stat) int {
	return defaultStats[stat]
}

// Listener receives change notifications. Calls are made after the state lock is
// released, so listeners may read the state back.
type Listener interface {
	// StatChanged fires when a stat bar needs refreshing.
	StatChanged(stat Stat, value int)
	// Recomputed fires after every happiness recompute.
	Recomputed(snap Snapshot, levelsGained int)
	// StateChanged fires when a persisted non-stat field changes.
	StateChanged(snap Snapshot)
}

// PetState is the single mutable aggregate behind a widget.
// All writes go through methods so the stat invariants always hold.
type PetState struct {
	mu sync.RWMutex

	name      string
	speciesID string

	stats              map[Stat]int
	happiness          int
	level              int
	nextLevelThreshold int

	mode          Mode
	currentAction string
	baseState     BaseState
	idlePhase     string
	soundEnabled  bool
	lastTick      time.Time

	listener Listener
}

// Snapshot is a read-only copy of PetState for use outside the lock.
type Snapshot struct {
	Name      string
	SpeciesID string

	Hunger     int
	Sleepiness int
	Boredom    int
	Overstim   int
	Affection  int

	Happiness          int
	Level              int
	NextLevelThreshold int

	Mode          Mode
	CurrentAction string
	BaseState     BaseState
	IdlePhase     string
	SoundEnabled  bool
	LastTick      time.Time

	Mood string
}

// Value returns the named stat from the snapshot.
func (s Snapshot) Value(stat Stat) int {
	switch stat {
	case Hunger:
		return s.Hunger
	case Sleepiness:
		return s.Sleepiness
	case Boredom:
		return s.Boredom
	case Overstim:
		return s.Overstim
	case Affection:
		return s.Affection
	}
	return 0
}

// NewPetState creates a pet with default stats.
func NewPetState() *PetState {
	s := &PetState{
		stats:              make(map[Stat]int, len(Stats)),
		level:              DefaultLevel,
		nextLevelThreshold: DefaultThreshold,
		mode:               ModeIdle,
		baseState:          BaseFloat,
		soundEnabled:       true,
	}
	for _, stat := range Stats {
		s.stats[stat] = defaultStats[stat]
	}
	s.happiness = happinessOf(s.stats)
	return s
}

// SetListener installs the change listener. Pass nil to detach.
func (s *PetState) SetListener(l Listener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

// Snapshot copies fields under RLock and computes derived values.
func (s *PetState) Snapshot() Snapshot {
	s.mu.RLock()
	snap := s.snapshotLocked()
	s.mu.RUnlock()
	return snap
}

func (s *PetState) snapshotLocked() Snapshot {
	snap := Snapshot{
		Name:               s.name,
		SpeciesID:          s.speciesID,
		Hunger:             s.stats[Hunger],
		Sleepiness:         s.stats[Sleepiness],
		Boredom:            s.stats[Boredom],
		Overstim:           s.stats[Overstim],
		Affection:          s.stats[Affection],
		Happiness:          s.happiness,
		Level:              s.level,
		NextLevelThreshold: s.nextLevelThreshold,
		Mode:               s.mode,
		CurrentAction:      s.currentAction,
		BaseState:          s.baseState,
		IdlePhase:          s.idlePhase,
		SoundEnabled:       s.soundEnabled,
		LastTick:           s.lastTick,
	}
	snap.Mood = DetermineMood(snap)
	return snap
}

// Mode returns the current mode.
func (s *PetState) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// BaseState returns the current posture.
func (s *PetState) BaseState() BaseState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseState
}

// SoundEnabled reports whether sounds should play.
func (s *PetState) SoundEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.soundEnabled
}

// LastTick returns when drift was last applied.
func (s *PetState) LastTick() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTick
}

// IsOnboarded returns true if the pet has been named.
func (s *PetState) IsOnboarded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name != "" && s.speciesID != ""
}

// SetIdentity sets name and species during onboarding.
func (s *PetState) SetIdentity(name, speciesID string) {
	s.update(func() bool {
		if s.name == name && s.speciesID == speciesID {
			return false
		}
		s.name = name
		s.speciesID = speciesID
		return true
	})
}

// SetMode records the current mode.
func (s *PetState) SetMode(m Mode) {
	if !m.Valid() {
		return
	}
	s.update(func() bool {
		if s.mode == m {
			return false
		}
		s.mode = m
		return true
	})
}

// SetPosture records the base-layer posture and idle label.
func (s *PetState) SetPosture(base BaseState, idlePhase string) {
	s.update(func() bool {
		changed := false
		if base.Valid() && s.baseState != base {
			s.baseState = base
			changed = true
		}
		if s.idlePhase != idlePhase {
			s.idlePhase = idlePhase
			changed = true
		}
		return changed
	})
}

// SetCurrentAction records the last accepted action.
func (s *PetState) SetCurrentAction(action string) {
	s.update(func() bool {
		if s.currentAction == action {
			return false
		}
		s.currentAction = action
		return true
	})
}

// SetSoundEnabled toggles sound playback.
func (s *PetState) SetSoundEnabled(on bool) {
	s.update(func() bool {
		if s.soundEnabled == on {
			return false
		}
		s.soundEnabled = on
		return true
	})
}

// SetLastTick stamps the drift clock. Always notifies so the stamp is persisted.
func (s *PetState) SetLastTick(t time.Time) {
	s.update(func() bool {
		s.lastTick = t
		return true
	})
}

// update runs fn under the write lock and notifies the listener if it changed anything.
func (s *PetState) update(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	snap := s.snapshotLocked()
	l := s.listener
	s.mu.Unlock()

	if changed && l != nil {
		l.StateChanged(snap)
	}
}
