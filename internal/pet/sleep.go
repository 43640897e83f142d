package pet

import "time"

// SleepWindow is a local time-of-day range [StartHour, EndHour) that may wrap
// past midnight.
type SleepWindow struct {
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

// DefaultSleepWindow is 22:00 to 07:00.
var DefaultSleepWindow = SleepWindow{StartHour: 22, EndHour: 7}

// Contains reports whether t's local hour falls inside the window.
// An empty window (start == end) never matches.
func (w SleepWindow) Contains(t time.Time) bool {
	h := t.Local().Hour()
	switch {
	case w.StartHour == w.EndHour:
		return false
	case w.StartHour < w.EndHour:
		return h >= w.StartHour && h < w.EndHour
	default:
		return h >= w.StartHour || h < w.EndHour
	}
}
