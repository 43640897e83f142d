package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/moorebrett0/deskpet/internal/brain"
	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/rules"
	"github.com/moorebrett0/deskpet/internal/species"
)

// actionTimeout bounds how long a Discord handler waits for the widget loop.
const actionTimeout = 5 * time.Second

var errNotOwner = errors.New("only my owner can do that")

// Widget is the running pet as seen from Discord.
type Widget interface {
	Act(ctx context.Context, a rules.Action) (string, error)
	ToggleSound() bool
	Snapshot() pet.Snapshot
}

// Dispatcher runs fn on the widget's goroutine.
type Dispatcher interface {
	Call(ctx context.Context, fn func()) error
}

// Router dispatches Discord messages, slash commands and panel buttons.
type Router struct {
	bot    *Bot
	widget Widget
	loop   Dispatcher
	brain  *brain.Brain // nil if AI is disabled

	assetBaseURL  string
	petChatChance float64 // probability of responding to another pet (0-1)

	// Anti-loop: cooldown for bot-to-bot responses
	mu           sync.Mutex
	lastBotReply time.Time
	botCooldown  time.Duration
}

// NewRouter creates a router and wires it to the bot.
func NewRouter(bot *Bot, w Widget, loop Dispatcher, b *brain.Brain, assetBaseURL string) *Router {
	r := &Router{
		bot:           bot,
		widget:        w,
		loop:          loop,
		brain:         b,
		assetBaseURL:  assetBaseURL,
		petChatChance: 0.25,            // 25% chance to respond to another pet
		botCooldown:   3 * time.Minute, // don't respond to bots more than once per 3min
	}
	bot.SetRouter(r)
	return r
}

// perform runs an action for a user and returns the in-character reply.
func (r *Router) perform(ctx context.Context, a rules.Action, isOwner bool) (string, error) {
	if !isOwner && !(a == rules.ActionPet && r.bot.allowSpectatorPet) {
		return "", errNotOwner
	}
	ctx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()
	if _, err := r.widget.Act(ctx, a); err != nil {
		return "", err
	}
	snap := r.widget.Snapshot()
	return TemplateAction(a, snap, species.Get(snap.SpeciesID)), nil
}

// toggleSound flips sound on the widget goroutine.
func (r *Router) toggleSound(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()
	var on bool
	err := r.loop.Call(ctx, func() { on = r.widget.ToggleSound() })
	return on, err
}

// refusal turns an action error into something the pet would say.
func refusal(err error, sp *species.Species) string {
	var rej *rules.Rejection
	switch {
	case errors.As(err, &rej):
		return fmt.Sprintf("%s %s", sp.Emoji, rej.Message)
	case errors.Is(err, errNotOwner):
		return fmt.Sprintf("%s nice try. only my owner gets to do that.", sp.Emoji)
	default:
		slog.Error("router: action failed", "err", err)
		return fmt.Sprintf("%s *blinks* something went wrong.", sp.Emoji)
	}
}

// HandleInteraction dispatches a slash command interaction.
func (r *Router) HandleInteraction(i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	isOwner := r.bot.IsOwner(interactionUserID(i))

	snap := r.widget.Snapshot()
	sp := species.Get(snap.SpeciesID)

	switch data.Name {
	case "status":
		r.respondEmbed(i, StatusEmbed(snap, sp, r.bot.panel.currentFrame(), r.assetBaseURL))

	case "help":
		r.respond(i, TemplateHelp(snap, sp))

	case "sound":
		if !isOwner {
			r.respondEphemeral(i, refusal(errNotOwner, sp))
			return
		}
		on, err := r.toggleSound(context.Background())
		if err != nil {
			r.respondEphemeral(i, refusal(err, sp))
			return
		}
		r.respond(i, soundReply(on))

	default:
		a := rules.Action(data.Name)
		reply, err := r.perform(context.Background(), a, isOwner)
		if err != nil {
			r.respondEphemeral(i, refusal(err, sp))
			return
		}
		r.respond(i, reply)
	}
}

// HandleComponent dispatches a panel button press. Accepted presses only
// acknowledge; the panel redraws itself.
func (r *Router) HandleComponent(i *discordgo.InteractionCreate) {
	a, sound, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	isOwner := r.bot.IsOwner(interactionUserID(i))
	sp := species.Get(r.widget.Snapshot().SpeciesID)

	var err error
	switch {
	case sound && !isOwner:
		err = errNotOwner
	case sound:
		_, err = r.toggleSound(context.Background())
	default:
		_, err = r.perform(context.Background(), a, isOwner)
	}
	if err != nil {
		r.respondEphemeral(i, refusal(err, sp))
		return
	}
	r.respondDeferredUpdate(i)
}

// HandleMessage dispatches a free-form channel message.
func (r *Router) HandleMessage(m *discordgo.MessageCreate) {
	text := strings.TrimSpace(m.Content)
	if text == "" {
		return
	}

	// If from another bot (another pet), maybe respond
	if m.Author.Bot {
		r.handlePetMessage(m, text)
		return
	}

	snap := r.widget.Snapshot()
	sp := species.Get(snap.SpeciesID)

	// If directly @mentioned, strip the mention and treat as a direct message
	if r.bot.IsMentioned(m) {
		text = r.bot.StripMention(text)
		if text == "" {
			r.bot.SendMessage(m.ChannelID, TemplateGreeting(snap, sp))
			return
		}
		r.handleDirectMessage(m, text)
		return
	}

	// Not mentioned: pattern matches still work without an @mention
	lower := strings.ToLower(text)
	isOwner := r.bot.IsOwner(m.Author.ID)

	var a rules.Action
	switch {
	case matchesAffection(lower):
		a = rules.ActionPet
	case matchesFeeding(lower) && isOwner:
		a = rules.ActionFeed
	case matchesGreeting(lower):
		r.bot.SendMessage(m.ChannelID, TemplateGreeting(snap, sp))
		return
	default:
		// No pattern match: stay quiet so several pets don't all answer.
		return
	}

	reply, err := r.perform(context.Background(), a, isOwner)
	if err != nil {
		reply = refusal(err, sp)
	}
	r.bot.SendMessage(m.ChannelID, reply)
}

// handleDirectMessage handles a message where the bot was @mentioned.
func (r *Router) handleDirectMessage(m *discordgo.MessageCreate, text string) {
	snap := r.widget.Snapshot()
	sp := species.Get(snap.SpeciesID)

	if r.brain == nil {
		behavior := TemplateIdleBehavior(snap, sp)
		if behavior == "" {
			behavior = fmt.Sprintf("%s ...", sp.Emoji)
		}
		r.bot.SendMessage(m.ChannelID, behavior)
		return
	}

	// Owners can ask for actions, spectators only get conversation
	ctx := context.Background()
	prompt := text
	if !r.bot.IsOwner(m.Author.ID) {
		ctx = brain.WithoutActions(ctx)
		prompt = fmt.Sprintf("[Message from spectator %s, not your owner]: %s", m.Author.Username, text)
	}
	resp, err := r.brain.Ask(ctx, prompt)
	if err != nil {
		slog.Error("router: brain error", "err", err)
		r.bot.SendMessage(m.ChannelID, "Something went wrong... I'll try again in a moment.")
		return
	}
	r.bot.SendMessage(m.ChannelID, resp)
}

// handlePetMessage decides whether to respond to another pet's message.
func (r *Router) handlePetMessage(m *discordgo.MessageCreate, text string) {
	// Don't respond if brain is nil (no AI = can't generate pet-to-pet banter)
	if r.brain == nil {
		return
	}

	r.mu.Lock()
	if time.Since(r.lastBotReply) < r.botCooldown {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	// Roll the dice
	if rand.Float64() > r.petChatChance {
		return
	}

	// Asleep pets don't chat
	if r.widget.Snapshot().Mode == pet.ModeSleep {
		return
	}

	prompt := fmt.Sprintf(
		"[Another pet in the channel (%s) just said: \"%s\"]\nRespond briefly in character. You're chatting with a fellow digital pet. Keep it to 1-2 sentences max. Be playful.",
		m.Author.Username, text,
	)

	resp, err := r.brain.Ask(brain.WithoutActions(context.Background()), prompt)
	if err != nil {
		slog.Debug("router: pet-to-pet brain error", "err", err)
		return
	}

	r.mu.Lock()
	r.lastBotReply = time.Now()
	r.mu.Unlock()

	r.bot.SendMessage(m.ChannelID, resp)
}

func soundReply(on bool) string {
	if on {
		return "🔊 sounds on"
	}
	return "🔇 sounds off"
}

// --- Interaction response helpers ---

func (r *Router) respond(i *discordgo.InteractionCreate, content string) {
	r.interactionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

func (r *Router) respondEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	r.interactionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func (r *Router) respondEphemeral(i *discordgo.InteractionCreate, content string) {
	r.interactionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func (r *Router) respondDeferredUpdate(i *discordgo.InteractionCreate) {
	r.interactionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

func (r *Router) interactionRespond(i *discordgo.InteractionCreate, resp *discordgo.InteractionResponse) {
	if err := r.bot.session.InteractionRespond(i.Interaction, resp); err != nil {
		slog.Error("discord: interaction response failed", "err", err)
	}
}

// --- Pattern matchers ---

func matchesAffection(text string) bool {
	patterns := []string{
		"good fish", "good pet", "good boy", "good girl",
		"pet you", "scratch", "head pat", "pat pat",
		"love you", "cuddle", "snuggle", "hug", "boop",
	}
	return containsAny(text, patterns)
}

func matchesGreeting(text string) bool {
	words := []string{"hello", "hi", "hey", "howdy", "sup", "yo", "hiya", "heya"}
	phrases := []string{"good morning", "good evening", "good night", "what's up", "whats up"}
	return containsWord(text, words) || containsAny(text, phrases)
}

func matchesFeeding(text string) bool {
	patterns := []string{
		"feed", "food", "treat", "snack", "dinner", "lunch", "breakfast", "hungry", "nom",
	}
	return containsAny(text, patterns)
}

func containsAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// containsWord matches whole words only, so "hi" doesn't fire on "this".
func containsWord(text string, words []string) bool {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r == '\'')
	})
	for _, f := range fields {
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
