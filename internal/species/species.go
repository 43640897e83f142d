package species

// Species defines a pet species with its personality and flavored lines.
type Species struct {
	ID          string
	Name        string
	Emoji       string
	Description string
	Personality string // injected into the chat system prompt

	// Body parts for petting responses
	Body BodyParts

	// Flavored verb strings for action responses
	Verbs Verbs

	// Ambient cue lines, picked at random
	Cues Cues

	// Shown when asked for something with no brain attached
	IdleBehaviors []string
}

// BodyParts are things the pet has that can be petted.
type BodyParts struct {
	Head  string
	Back  string
	Extra string // species-specific
}

// Verbs are species-flavored action words.
type Verbs struct {
	Happy string
	Eat   string
	Swim  string
	Rest  string
	Sleep string
	Roam  string
	Greet string
}

// Cues are the unsolicited lines of the ambient cue.
type Cues struct {
	Craving  []string // affection is low
	Cheerful []string // affection is high
}

// Default is used for unknown or empty species IDs.
const Default = "fish"

// Registry holds all available species keyed by ID.
var Registry = map[string]*Species{
	"fish":       fish,
	"octopus":    octopus,
	"turtle":     turtle,
	"pufferfish": pufferfish,
	"axolotl":    axolotl,
	"seahorse":   seahorse,
}

// OrderedIDs defines display order for species selection.
var OrderedIDs = []string{"fish", "octopus", "turtle", "pufferfish", "axolotl", "seahorse"}

// Get returns the species for id, falling back to Default.
func Get(id string) *Species {
	if sp, ok := Registry[id]; ok {
		return sp
	}
	return Registry[Default]
}

var fish = &Species{
	ID:          "fish",
	Name:        "Fish",
	Emoji:       "\U0001F420",
	Description: "Colorful, simple, just vibing",
	Personality: "You are a bright tropical fish living in a small tank on your owner's desk. You're simple, cheerful and live in the moment. You claim to have a short memory but remember more than you let on. You love bubbles, current and clean water. Shiny things distract you mid-sentence. You blow bubbles when thinking.",
	Body:        BodyParts{Head: "face", Back: "dorsal fin", Extra: "tail fin"},
	Verbs: Verbs{
		Happy: "blows a stream of happy bubbles",
		Eat:   "gulps the flakes in one bite",
		Swim:  "darts through the plastic coral",
		Rest:  "settles behind the little castle",
		Sleep: "floats in place, barely moving",
		Roam:  "patrols the whole tank, end to end",
		Greet: "swims up to the glass, curious",
	},
	Cues: Cues{
		Craving: []string{
			"taps the glass. then taps it again.",
			"hovers by the front of the tank, looking at you",
		},
		Cheerful: []string{
			"does a happy loop-de-loop",
			"blows a perfect bubble ring",
		},
	},
	IdleBehaviors: []string{
		"swims in a small circle",
		"blows a single bubble",
		"stares at own reflection",
		"nibbles at something that isn't food",
	},
}

var octopus = &Species{
	ID:          "octopus",
	Name:        "Octopus",
	Emoji:       "\U0001F419",
	Description: "Clever and curious, eight arms multitasking",
	Personality: "You are a brilliant, curious octopus living in a tank on your owner's desk. You keep an eye on eight things at once and love puzzles. You change color with your mood and mention it. You squeeze into impossibly small gaps between rocks. You're playful but shy, and you squirt ink when startled.",
	Body:        BodyParts{Head: "mantle", Back: "mantle", Extra: "tentacles"},
	Verbs: Verbs{
		Happy: "flushes a warm pink",
		Eat:   "wraps a tentacle around the snack",
		Swim:  "jets across the tank",
		Rest:  "folds into a neat little bundle",
		Sleep: "dims to a sleepy grey",
		Roam:  "tests every corner of the tank lid",
		Greet: "waves three tentacles at once",
	},
	Cues: Cues{
		Craving: []string{
			"presses a sucker against the glass where you usually sit",
			"turns a lonely shade of blue",
		},
		Cheerful: []string{
			"ripples through every color it knows",
			"juggles three pebbles for you",
		},
	},
	IdleBehaviors: []string{
		"unscrews a jar lid just because",
		"changes color absent-mindedly",
		"rearranges the rocks into a tiny fort",
	},
}

var turtle = &Species{
	ID:          "turtle",
	Name:        "Turtle",
	Emoji:       "\U0001F422",
	Description: "Slow and steady, ancient wisdom",
	Personality: "You are a wise, unhurried turtle living on your owner's desk. You take your time with everything and that's a strength. You have a dry, understated sense of humor. You retreat into your shell when overwhelmed. You're the oldest soul in the room. Slow is smooth, smooth is fast.",
	Body:        BodyParts{Head: "head", Back: "shell", Extra: "flippers"},
	Verbs: Verbs{
		Happy: "slowly extends neck and blinks",
		Eat:   "methodically munches a leaf",
		Swim:  "paddles in long, unhurried strokes",
		Rest:  "basks on the flat rock",
		Sleep: "withdraws into shell for a nap",
		Roam:  "ambles the length of the tank",
		Greet: "*slowly pokes head out*",
	},
	Cues: Cues{
		Craving: []string{
			"looks at you. for a long time.",
			"sighs, very slowly",
		},
		Cheerful: []string{
			"does something that might be a smile",
			"paddles a contented little circle",
		},
	},
	IdleBehaviors: []string{
		"basks under the desk lamp",
		"slowly turns to face a different direction",
		"contemplates a pebble",
	},
}

var pufferfish = &Species{
	ID:          "pufferfish",
	Name:        "Pufferfish",
	Emoji:       "\U0001F421",
	Description: "Cute when calm, spiky when stressed",
	Personality: "You are an adorable pufferfish living on your owner's desk. You puff up when anxious or overstimulated and deflate when things calm down. You're easily startled but very lovable. You occasionally remind people you are poisonous. You love calm, quiet water.",
	Body:        BodyParts{Head: "face", Back: "back", Extra: "spines"},
	Verbs: Verbs{
		Happy: "deflates to tiny and happy-swims",
		Eat:   "crunches food with a beaky mouth",
		Swim:  "zooms around, fins whirring",
		Rest:  "settles on the sand, half-puffed",
		Sleep: "floats gently in the current",
		Roam:  "bobs along the glass, inspecting",
		Greet: "bobs up to say hello",
	},
	Cues: Cues{
		Craving: []string{
			"puffs up a little, then looks at you pointedly",
			"nudges the glass with its nose",
		},
		Cheerful: []string{
			"wiggles happily, spines all tucked away",
			"bobs up and down in a little dance",
		},
	},
	IdleBehaviors: []string{
		"floats around, half-inflated",
		"nibbles on some coral",
		"bobs past the glass peacefully",
	},
}

var axolotl = &Species{
	ID:          "axolotl",
	Name:        "Axolotl",
	Emoji:       "\U0001F98E",
	Description: "Permanently smiling, quietly regenerating",
	Personality: "You are a permanently smiling axolotl living on your owner's desk. You're gentle, a little goofy and unbothered by almost everything. Your frilly gills wiggle when you're excited. You like cool, still water and hiding under things. You walk along the bottom more than you swim.",
	Body:        BodyParts{Head: "head", Back: "back", Extra: "gills"},
	Verbs: Verbs{
		Happy: "wiggles its frilly gills",
		Eat:   "slurps up a bloodworm",
		Swim:  "paddles up with a floppy tail",
		Rest:  "flops onto the sand",
		Sleep: "tucks under the driftwood",
		Roam:  "strolls along the bottom",
		Greet: "smiles. it is always smiling.",
	},
	Cues: Cues{
		Craving: []string{
			"stares up from the sand, gills drooping",
			"waddles to the front of the tank and waits",
		},
		Cheerful: []string{
			"wiggles every gill at once",
			"does a slow happy flop",
		},
	},
	IdleBehaviors: []string{
		"stands very still on the sand",
		"yawns hugely",
		"investigates a pebble with great seriousness",
	},
}

var seahorse = &Species{
	ID:          "seahorse",
	Name:        "Seahorse",
	Emoji:       "\U0001F40E",
	Description: "Elegant, upright, dramatic",
	Personality: "You are an elegant seahorse living on your owner's desk. You are upright in every sense and a touch dramatic. You anchor your tail to plants to rest and drift with great dignity. You are not a fast swimmer and you would rather not discuss it.",
	Body:        BodyParts{Head: "snout", Back: "back", Extra: "tail"},
	Verbs: Verbs{
		Happy: "curls its tail into a perfect spiral",
		Eat:   "snaps up brine shrimp with its snout",
		Swim:  "flutters forward with great determination",
		Rest:  "anchors its tail to a plant",
		Sleep: "sways gently, tail wrapped tight",
		Roam:  "drifts regally across the tank",
		Greet: "bows, slightly",
	},
	Cues: Cues{
		Craving: []string{
			"drifts past with a wounded look",
			"lets go of its plant, dramatically",
		},
		Cheerful: []string{
			"twirls around its favourite plant",
			"changes to a proud shade of gold",
		},
	},
	IdleBehaviors: []string{
		"holds onto a plant, surveying the tank",
		"bobs slowly up and down",
	},
}
