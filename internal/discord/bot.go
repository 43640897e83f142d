package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/species"
)

// Bot wraps the Discord session and manages slash commands, messages, and presence.
type Bot struct {
	session   *discordgo.Session
	channelID string
	ownerIDs  map[string]bool

	allowSpectatorPet bool

	panel  *Panel
	router *Router

	introduce func() pet.Snapshot

	mu     sync.Mutex
	cancel context.CancelFunc
}

// BotConfig configures a Bot.
type BotConfig struct {
	Token             string
	ChannelID         string
	OwnerIDs          []string
	AllowSpectatorPet bool
	AssetBaseURL      string
	EditInterval      time.Duration
}

// NewBot creates and configures a Discord bot (does not connect yet).
func NewBot(cfg BotConfig) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("invalid bot token: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuilds

	owners := make(map[string]bool, len(cfg.OwnerIDs))
	for _, id := range cfg.OwnerIDs {
		owners[id] = true
	}

	return &Bot{
		session:           session,
		channelID:         cfg.ChannelID,
		ownerIDs:          owners,
		allowSpectatorPet: cfg.AllowSpectatorPet,
		panel:             NewPanel(session, cfg.ChannelID, cfg.AssetBaseURL, cfg.EditInterval),
	}, nil
}

// Panel returns the status panel, which is the widget's UI.
func (b *Bot) Panel() *Panel {
	return b.panel
}

// SetRouter wires the router to handle messages and interactions.
func (b *Bot) SetRouter(r *Router) {
	b.router = r
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)
	b.session.AddHandler(b.onReady)
}

// Start opens the Discord connection, registers slash commands and keeps the
// panel up to date. Blocks until context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()
	defer cancel()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	slog.Info("discord: connected", "user", b.session.State.User.Username)

	b.registerCommands()
	if b.introduce != nil {
		b.SendIntroduction(b.introduce())
	}
	b.panel.Flush()
	go b.panel.Run(ctx)

	<-ctx.Done()
	slog.Info("discord: shutting down")
	return b.session.Close()
}

// Stop disconnects a running bot.
func (b *Bot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
	}
}

// ChannelID returns the configured channel ID.
func (b *Bot) ChannelID() string {
	return b.channelID
}

// SendMessage sends a text message to a channel.
func (b *Bot) SendMessage(channelID, text string) {
	if text == "" {
		return
	}
	if _, err := b.session.ChannelMessageSend(channelID, text); err != nil {
		slog.Error("discord: send message failed", "err", err)
	}
}

// UpdatePresence sets the bot's Discord status based on pet mood.
func (b *Bot) UpdatePresence(mood string) {
	status, activity := moodToPresence(mood)
	err := b.session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: status,
		Activities: []*discordgo.Activity{
			{
				Name:  activity,
				State: activity,
				Type:  discordgo.ActivityTypeCustom,
			},
		},
	})
	if err != nil {
		slog.Debug("discord: update presence failed", "err", err)
	}
}

// IsOwner checks if a user ID is in the owner list.
func (b *Bot) IsOwner(userID string) bool {
	return b.ownerIDs[userID]
}

// IntroduceOnStart makes the next Start post an introduction for a newly
// hatched pet.
func (b *Bot) IntroduceOnStart(snapshot func() pet.Snapshot) {
	b.introduce = snapshot
}

// SendIntroduction posts the pet's first message in the channel.
func (b *Bot) SendIntroduction(snap pet.Snapshot) {
	b.SendMessage(b.channelID, TemplateIntroduction(snap, species.Get(snap.SpeciesID)))
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("discord: ready", "user", r.User.Username, "guilds", len(r.Guilds))
}

// BotUserID returns the bot's own user ID.
func (b *Bot) BotUserID() string {
	if b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.ID
	}
	return ""
}

// IsMentioned checks if the bot was @mentioned in the message.
func (b *Bot) IsMentioned(m *discordgo.MessageCreate) bool {
	for _, u := range m.Mentions {
		if u.ID == b.BotUserID() {
			return true
		}
	}
	return false
}

// StripMention removes the bot's @mention from message text.
func (b *Bot) StripMention(text string) string {
	botID := b.BotUserID()
	// Discord mentions look like <@123456> or <@!123456>
	text = strings.ReplaceAll(text, "<@"+botID+">", "")
	text = strings.ReplaceAll(text, "<@!"+botID+">", "")
	return strings.TrimSpace(text)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore own messages only (not other bots)
	if m.Author.ID == s.State.User.ID {
		return
	}

	// Only respond in the configured channel
	if m.ChannelID != b.channelID {
		return
	}

	if b.router != nil {
		b.router.HandleMessage(m)
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if b.router == nil {
		return
	}
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.router.HandleInteraction(i)
	case discordgo.InteractionMessageComponent:
		b.router.HandleComponent(i)
	}
}

func (b *Bot) registerCommands() {
	appID := b.session.State.User.ID
	commands := []*discordgo.ApplicationCommand{
		{Name: "status", Description: "Check your pet's stats and mood"},
		{Name: "pet", Description: "Give your pet some affection"},
		{Name: "feed", Description: "Drop some food into the tank"},
		{Name: "swim", Description: "Send your pet for a swim"},
		{Name: "rest", Description: "Let your pet settle down"},
		{Name: "sleep", Description: "Lights out (night time only)"},
		{Name: "roam", Description: "Let your pet explore"},
		{Name: "sound", Description: "Toggle your pet's sounds"},
		{Name: "help", Description: "Show available commands"},
	}

	created, err := b.session.ApplicationCommandBulkOverwrite(appID, "", commands)
	if err != nil {
		slog.Error("discord: failed to register commands", "err", err)
		return
	}
	slog.Info("discord: registered commands", "count", len(created))
}

func moodToPresence(mood string) (status, activity string) {
	switch mood {
	case "happy":
		return "online", "feeling great!"
	case "content":
		return "online", "just vibing"
	case "bored":
		return "idle", "anyone there?"
	case "lonely":
		return "idle", "misses you..."
	case "hungry":
		return "idle", "getting hungry..."
	case "sleepy":
		return "idle", "yawning"
	case "asleep":
		return "idle", "zzz"
	case "frazzled":
		return "dnd", "needs a minute"
	default:
		return "online", "just vibing"
	}
}
