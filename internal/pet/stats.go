package pet

import "math"

type nudge struct {
	stat  Stat
	delta int
}

// levelNudges reward every level-up.
var levelNudges = []nudge{
	{Affection, 5},
	{Overstim, -5},
	{Boredom, -5},
}

// Stat returns the current value of stat. ok is false for unknown names.
func (s *PetState) Stat(stat Stat) (value int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok = s.stats[stat]
	return value, ok
}

// Happiness returns the derived happiness.
func (s *PetState) Happiness() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.happiness
}

// Level returns the current level.
func (s *PetState) Level() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level
}

// ApplyDelta adds delta to stat, clamped to [0,100]. Returns false for unknown stats
// and when the clamped value equals the prior one; a real change recomputes happiness.
func (s *PetState) ApplyDelta(stat Stat, delta int) bool {
	if !s.ApplySilent(stat, delta) {
		return false
	}
	s.RecomputeHappiness()
	return true
}

// ApplySilent is ApplyDelta without the happiness recompute. Only the stat bar is
// refreshed. Used for batched drift.
func (s *PetState) ApplySilent(stat Stat, delta int) bool {
	if !stat.Valid() {
		return false
	}

	s.mu.Lock()
	value, changed := s.adjustLocked(stat, delta)
	l := s.listener
	s.mu.Unlock()

	if changed && l != nil {
		l.StatChanged(stat, value)
	}
	return changed
}

func (s *PetState) adjustLocked(stat Stat, delta int) (int, bool) {
	prev := s.stats[stat]
	next := clamp(prev + delta)
	s.stats[stat] = next
	return next, next != prev
}

// RecomputeHappiness derives happiness from the stats and grants level-ups while it
// meets the threshold. Each level raises the threshold and nudges the stats; the
// loop only continues while the threshold can still rise, so it ends once the
// threshold is pinned at MaxThreshold.
func (s *PetState) RecomputeHappiness() {
	s.mu.Lock()
	s.happiness = happinessOf(s.stats)

	levels := 0
	var touched []Stat
	for s.happiness >= s.nextLevelThreshold {
		next := min(MaxThreshold, s.nextLevelThreshold+5+2*(s.level+1))
		if next <= s.nextLevelThreshold {
			break
		}
		s.level++
		s.nextLevelThreshold = next
		for _, n := range levelNudges {
			if _, changed := s.adjustLocked(n.stat, n.delta); changed {
				touched = append(touched, n.stat)
			}
		}
		s.happiness = happinessOf(s.stats)
		levels++
	}

	snap := s.snapshotLocked()
	l := s.listener
	s.mu.Unlock()

	if l == nil {
		return
	}
	for _, stat := range touched {
		l.StatChanged(stat, snap.Value(stat))
	}
	l.Recomputed(snap, levels)
}

// happinessOf is the rounded mean of the inverted "bad" stats and affection.
func happinessOf(stats map[Stat]int) int {
	sum := (100 - stats[Hunger]) +
		(100 - stats[Sleepiness]) +
		(100 - stats[Boredom]) +
		(100 - stats[Overstim]) +
		stats[Affection]
	return int(math.Round(float64(sum) / float64(len(Stats))))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
