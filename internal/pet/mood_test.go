package pet

import (
	"testing"
	"time"
)

func TestDetermineMood(t *testing.T) {
	base := NewPetState().Snapshot()

	tests := []struct {
		name string
		edit func(*Snapshot)
		want string
	}{
		{"defaults are happy", func(s *Snapshot) {}, "happy"},
		{"sleep mode wins", func(s *Snapshot) { s.Mode = ModeSleep; s.Hunger = 100 }, "asleep"},
		{"hungry", func(s *Snapshot) { s.Hunger = 80 }, "hungry"},
		{"sleepy", func(s *Snapshot) { s.Sleepiness = 90 }, "sleepy"},
		{"frazzled", func(s *Snapshot) { s.Overstim = 75 }, "frazzled"},
		{"lonely", func(s *Snapshot) { s.Affection = 10 }, "lonely"},
		{"bored", func(s *Snapshot) { s.Boredom = 95 }, "bored"},
		{"content", func(s *Snapshot) { s.Happiness = 60 }, "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := base
			tt.edit(&snap)
			if got := DetermineMood(snap); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSleepWindow_Contains(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2026, 1, 2, hour, 30, 0, 0, time.Local)
	}

	wrap := DefaultSleepWindow
	for hour, want := range map[int]bool{21: false, 22: true, 23: true, 0: true, 6: true, 7: false, 12: false} {
		if got := wrap.Contains(at(hour)); got != want {
			t.Errorf("wrapping window at %02d:30: expected %v, got %v", hour, want, got)
		}
	}

	day := SleepWindow{StartHour: 13, EndHour: 15}
	if !day.Contains(at(14)) || day.Contains(at(15)) {
		t.Error("daytime window boundaries wrong")
	}

	if (SleepWindow{StartHour: 3, EndHour: 3}).Contains(at(3)) {
		t.Error("empty window should never match")
	}
}
