package onboarding

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/moorebrett0/deskpet/internal/species"
)

// MaxNameLength is the longest accepted pet name, in runes.
const MaxNameLength = 32

// Identity is what onboarding decides.
type Identity struct {
	Name      string
	SpeciesID string
}

// Terminal runs the first-run conversation on a terminal.
type Terminal struct {
	In    io.Reader
	Out   io.Writer
	Delay time.Duration // per character when "typing"; 0 prints at once
}

// Run asks for a species and a name. It returns io.EOF if input ends first.
func (t *Terminal) Run() (Identity, error) {
	reader := bufio.NewReader(t.In)

	// Hatching animation
	fmt.Fprintln(t.Out)
	t.printSlow("  \U0001FAE7 blub... blub...")
	fmt.Fprintln(t.Out)
	t.pause(500 * time.Millisecond)

	fmt.Fprintln(t.Out, "  pick a species:")
	fmt.Fprintln(t.Out)

	// Display species grid (2 columns)
	for i := 0; i < len(species.OrderedIDs); i += 2 {
		left := species.Registry[species.OrderedIDs[i]]
		col1 := fmt.Sprintf("  %d) %s %-12s", i+1, left.Emoji, left.Name)

		if i+1 < len(species.OrderedIDs) {
			right := species.Registry[species.OrderedIDs[i+1]]
			fmt.Fprintf(t.Out, "%s%d) %s %s\n", col1, i+2, right.Emoji, right.Name)
		} else {
			fmt.Fprintln(t.Out, col1)
		}
	}

	// Species selection
	fmt.Fprintln(t.Out)
	var selectedID string
	for selectedID == "" {
		fmt.Fprint(t.Out, "  > ")
		input, err := readLine(reader)
		if err != nil {
			return Identity{}, err
		}
		selectedID = pickSpecies(input)
		if selectedID == "" {
			fmt.Fprintf(t.Out, "  hmm, pick a number 1-%d or type the species name\n", len(species.OrderedIDs))
		}
	}

	sp := species.Registry[selectedID]
	fmt.Fprintln(t.Out)
	fmt.Fprintf(t.Out, "  %s ...\n", sp.Emoji)
	fmt.Fprintln(t.Out)
	t.pause(300 * time.Millisecond)

	// Name selection
	fmt.Fprintln(t.Out, "  what's my name?")
	fmt.Fprintln(t.Out)

	var name string
	for {
		fmt.Fprint(t.Out, "  > ")
		input, err := readLine(reader)
		if err != nil {
			return Identity{}, err
		}
		name = strings.TrimSpace(input)
		if name != "" && len([]rune(name)) <= MaxNameLength {
			break
		}
		fmt.Fprintf(t.Out, "  pick a name (1-%d characters)\n", MaxNameLength)
	}

	// Reveal
	fmt.Fprintln(t.Out)
	fmt.Fprintf(t.Out, "  %s %s\n", sp.Emoji, sp.Verbs.Greet)
	fmt.Fprintln(t.Out)
	t.printSlow(fmt.Sprintf("  hi. i'm %s.", name))
	t.printSlow("  the water's nice in here. i like it.")
	fmt.Fprintln(t.Out)

	return Identity{Name: name, SpeciesID: selectedID}, nil
}

// PrintStartup prints the startup checklist after onboarding.
func (t *Terminal) PrintStartup(name, storage string, aiEnabled, discordConnected bool) {
	fmt.Fprintln(t.Out, "  starting up...")

	checks := []struct {
		label string
		ok    bool
	}{
		{"tank filled", true},
		{"state saved (" + storage + ")", true},
		{"ai connected", aiEnabled},
		{"discord connected", discordConnected},
	}

	for _, c := range checks {
		t.pause(200 * time.Millisecond)
		mark := "✓"
		if !c.ok {
			mark = "✗"
		}
		fmt.Fprintf(t.Out, "  %s %s\n", mark, c.label)
	}

	fmt.Fprintln(t.Out)
	t.printSlow(fmt.Sprintf("  %s is swimming. don't forget about me.", name))
	fmt.Fprintln(t.Out)
}

// pickSpecies accepts a list number or a species ID.
func pickSpecies(input string) string {
	input = strings.TrimSpace(input)
	if num, err := strconv.Atoi(input); err == nil && num >= 1 && num <= len(species.OrderedIDs) {
		return species.OrderedIDs[num-1]
	}
	lower := strings.ToLower(input)
	for _, id := range species.OrderedIDs {
		if id == lower {
			return id
		}
	}
	return ""
}

// readLine returns a line without its newline. A final line without a newline
// still counts; only an empty read at EOF is an error.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF && line != "" {
		return line, nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

func (t *Terminal) printSlow(text string) {
	if t.Delay <= 0 {
		fmt.Fprintln(t.Out, text)
		return
	}
	for _, ch := range text {
		fmt.Fprint(t.Out, string(ch))
		time.Sleep(t.Delay)
	}
	fmt.Fprintln(t.Out)
}

func (t *Terminal) pause(d time.Duration) {
	if t.Delay > 0 {
		time.Sleep(d)
	}
}
