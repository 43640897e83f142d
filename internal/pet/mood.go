package pet

// DetermineMood returns a mood string based on priority-ordered rules.
// Priority: Asleep > Hungry > Sleepy > Frazzled > Lonely > Bored > Happy > Content
func DetermineMood(s Snapshot) string {
	if s.Mode == ModeSleep {
		return "asleep"
	}

	if s.Hunger > 70 {
		return "hungry"
	}

	if s.Sleepiness > 70 {
		return "sleepy"
	}

	// Too much petting, poking, splashing
	if s.Overstim > 70 {
		return "frazzled"
	}

	if s.Affection < 30 {
		return "lonely"
	}

	if s.Boredom > 70 {
		return "bored"
	}

	if s.Happiness >= 75 && s.Hunger < 40 {
		return "happy"
	}

	return "content"
}
