package discord

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/rules"
	"github.com/moorebrett0/deskpet/internal/species"
)

// progressBar renders a visual bar like ████████░░ 78%
func progressBar(value, width int) string {
	filled := value * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	empty := width - filled
	return fmt.Sprintf("%s%s %d%%", strings.Repeat("█", filled), strings.Repeat("░", empty), value)
}

// moodColor returns a Discord embed color for the mood.
func moodColor(mood string) int {
	switch mood {
	case "happy":
		return 0x57F287 // green
	case "content":
		return 0x5865F2 // blurple
	case "bored":
		return 0xFEE75C // yellow
	case "hungry":
		return 0xEB459E // fuchsia
	case "sleepy", "asleep":
		return 0x99AAB5 // grey
	case "frazzled":
		return 0xED4245 // red
	case "lonely":
		return 0x3498DB // blue
	default:
		return 0x5865F2
	}
}

// frame is what the panel currently shows besides the pet state.
type frame struct {
	base    string
	overlay string
	message string
}

// StatusEmbed builds the status panel embed. assetBaseURL may be empty, in which
// case asset names are listed instead of shown.
func StatusEmbed(snap pet.Snapshot, sp *species.Species, f frame, assetBaseURL string) *discordgo.MessageEmbed {
	stats := fmt.Sprintf(
		"happiness %s\nhunger    %s\nsleepy    %s\nbored     %s\nfrazzled  %s\naffection %s",
		progressBar(snap.Happiness, 10),
		progressBar(snap.Hunger, 10),
		progressBar(snap.Sleepiness, 10),
		progressBar(snap.Boredom, 10),
		progressBar(snap.Overstim, 10),
		progressBar(snap.Affection, 10),
	)

	doing := snap.IdlePhase
	if doing == "" {
		doing = string(snap.BaseState)
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s %s", sp.Emoji, displayName(snap)),
		Description: fmt.Sprintf("mood: %s %s | level %d | %s", moodEmoji(snap.Mood), snap.Mood, snap.Level, doing),
		Color:       moodColor(snap.Mood),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Stats", Value: "```\n" + stats + "\n```", Inline: false},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("next level at %d happiness", snap.NextLevelThreshold),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if f.message != "" {
		embed.Footer.Text = f.message
	}

	switch {
	case assetBaseURL != "" && f.base != "":
		embed.Image = &discordgo.MessageEmbedImage{URL: assetURL(assetBaseURL, f.base)}
		if f.overlay != "" {
			embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: assetURL(assetBaseURL, f.overlay)}
		}
	case f.base != "":
		scene := f.base
		if f.overlay != "" {
			scene += " + " + f.overlay
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Scene", Value: scene, Inline: true})
	}
	return embed
}

func assetURL(base, asset string) string {
	return strings.TrimRight(base, "/") + "/" + asset
}

// TemplateAction is the reply to an accepted action.
func TemplateAction(a rules.Action, snap pet.Snapshot, sp *species.Species) string {
	switch a {
	case rules.ActionPet:
		return TemplateAffection(snap, sp)
	case rules.ActionFeed:
		return TemplateFeeding(snap, sp)
	case rules.ActionSwim:
		return fmt.Sprintf("%s %s %s!", sp.Emoji, displayName(snap), sp.Verbs.Swim)
	case rules.ActionRest:
		return fmt.Sprintf("%s %s %s.", sp.Emoji, displayName(snap), sp.Verbs.Rest)
	case rules.ActionSleep:
		return fmt.Sprintf("%s %s %s. zzz", sp.Emoji, displayName(snap), sp.Verbs.Sleep)
	case rules.ActionRoam:
		return fmt.Sprintf("%s %s %s.", sp.Emoji, displayName(snap), sp.Verbs.Roam)
	}
	return fmt.Sprintf("%s %s %s!", sp.Emoji, displayName(snap), sp.Verbs.Happy)
}

func TemplateAffection(snap pet.Snapshot, sp *species.Species) string {
	parts := []string{sp.Body.Head, sp.Body.Back, sp.Body.Extra}
	part := parts[rand.Intn(len(parts))]
	return fmt.Sprintf("%s You scratch %s's %s. %s %s!",
		sp.Emoji, displayName(snap), part, displayName(snap), sp.Verbs.Happy)
}

func TemplateFeeding(snap pet.Snapshot, sp *species.Species) string {
	return fmt.Sprintf("%s %s %s! Hunger is now at %d%%.",
		sp.Emoji, displayName(snap), sp.Verbs.Eat, snap.Hunger)
}

func TemplateGreeting(snap pet.Snapshot, sp *species.Species) string {
	return fmt.Sprintf("%s %s %s!", sp.Emoji, displayName(snap), sp.Verbs.Greet)
}

func TemplateIdleBehavior(snap pet.Snapshot, sp *species.Species) string {
	if len(sp.IdleBehaviors) == 0 {
		return ""
	}
	behavior := sp.IdleBehaviors[rand.Intn(len(sp.IdleBehaviors))]
	return fmt.Sprintf("%s %s %s.", sp.Emoji, displayName(snap), behavior)
}

func TemplateIntroduction(snap pet.Snapshot, sp *species.Species) string {
	return fmt.Sprintf("%s hey everyone. i'm %s.\n   just moved into a little tank on the desk.\n   the water's nice.",
		sp.Emoji, displayName(snap))
}

func TemplateHelp(snap pet.Snapshot, sp *species.Species) string {
	name := displayName(snap)
	return fmt.Sprintf("**%s deskpet commands**\n\n"+
		"`/status` — See %s's stats and mood\n"+
		"`/pet` — Give %s some love\n"+
		"`/feed` — Drop in some food\n"+
		"`/swim` — Laps around the tank\n"+
		"`/rest` — Settle down on the gravel\n"+
		"`/sleep` — Lights out (only at night)\n"+
		"`/roam` — Go exploring\n"+
		"`/sound` — Toggle sounds\n"+
		"`/help` — This message\n\n"+
		"The buttons under the panel do the same. Or just @mention %s!", sp.Emoji, name, name, name)
}

func moodEmoji(mood string) string {
	switch mood {
	case "happy":
		return "\U0001F60A"
	case "content":
		return "\U0001F60C"
	case "bored":
		return "\U0001F612"
	case "hungry":
		return "\U0001F60B"
	case "sleepy":
		return "\U0001F971"
	case "asleep":
		return "\U0001F634"
	case "frazzled":
		return "\U0001F635"
	case "lonely":
		return "\U0001F97A"
	default:
		return "\U0001F610"
	}
}

func displayName(snap pet.Snapshot) string {
	if snap.Name == "" {
		return "your pet"
	}
	return snap.Name
}
