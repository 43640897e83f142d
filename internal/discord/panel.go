package discord

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/moorebrett0/deskpet/internal/anim"
	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/rules"
	"github.com/moorebrett0/deskpet/internal/species"
)

// Custom IDs carried by the panel buttons.
const (
	actionPrefix = "action:"
	soundToggle  = "sound:toggle"
)

// panelSession is the part of *discordgo.Session the panel uses.
type panelSession interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Panel renders the widget as one status message in the channel: an embed with
// the stat bars and current scene, plus action buttons. Every UI call marks the
// panel dirty; a single goroutine flushes it, paced so Discord's rate limits are
// never hit.
type Panel struct {
	session      panelSession
	channelID    string
	assetBaseURL string
	limiter      *rate.Limiter
	dirty        chan struct{}

	mu        sync.Mutex
	snapshot  func() pet.Snapshot
	assets    map[anim.Layer]string
	message   string
	enabled   bool
	messageID string
}

// NewPanel creates a panel posting to channelID at most once per interval.
func NewPanel(session panelSession, channelID, assetBaseURL string, interval time.Duration) *Panel {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Panel{
		session:      session,
		channelID:    channelID,
		assetBaseURL: assetBaseURL,
		limiter:      rate.NewLimiter(rate.Every(interval), 1),
		dirty:        make(chan struct{}, 1),
		assets:       make(map[anim.Layer]string),
		enabled:      true,
	}
}

// SetSource tells the panel where to read the pet from.
func (p *Panel) SetSource(snapshot func() pet.Snapshot) {
	p.mu.Lock()
	p.snapshot = snapshot
	p.mu.Unlock()
	p.markDirty()
}

func (p *Panel) SetAsset(layer anim.Layer, asset string) {
	p.mu.Lock()
	p.assets[layer] = asset
	p.mu.Unlock()
	p.markDirty()
}

func (p *Panel) HideLayer(layer anim.Layer) {
	p.mu.Lock()
	delete(p.assets, layer)
	p.mu.Unlock()
	p.markDirty()
}

// SetStat redraws the bars. Values are read back from the pet on flush.
func (p *Panel) SetStat(string, int) {
	p.markDirty()
}

func (p *Panel) ShowMessage(text string) {
	p.mu.Lock()
	p.message = text
	p.mu.Unlock()
	p.markDirty()
}

func (p *Panel) SetButtons(_ []string, enabled bool) {
	p.mu.Lock()
	p.enabled = enabled
	p.mu.Unlock()
	p.markDirty()
}

func (p *Panel) markDirty() {
	select {
	case p.dirty <- struct{}{}:
	default:
	}
}

// Run flushes pending changes until ctx is cancelled.
func (p *Panel) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.dirty:
			if err := p.limiter.Wait(ctx); err != nil {
				return
			}
			p.Flush()
		}
	}
}

// Flush posts the panel, editing the existing message when there is one. A failed
// edit (the message was deleted, say) posts a fresh panel.
func (p *Panel) Flush() {
	embed, components, ok := p.render()
	if !ok {
		return
	}

	p.mu.Lock()
	id := p.messageID
	p.mu.Unlock()

	if id != "" {
		_, err := p.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         id,
			Channel:    p.channelID,
			Embeds:     &[]*discordgo.MessageEmbed{embed},
			Components: &components,
		})
		if err == nil {
			return
		}
		slog.Warn("discord: panel edit failed, reposting", "err", err)
	}

	msg, err := p.session.ChannelMessageSendComplex(p.channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		slog.Error("discord: panel send failed", "err", err)
		return
	}
	p.mu.Lock()
	p.messageID = msg.ID
	p.mu.Unlock()
}

// MessageID returns the panel message, or "" before the first flush.
func (p *Panel) MessageID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messageID
}

func (p *Panel) currentFrame() frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return frame{
		base:    p.assets[anim.LayerBase],
		overlay: p.assets[anim.LayerOverlay],
		message: p.message,
	}
}

func (p *Panel) render() (*discordgo.MessageEmbed, []discordgo.MessageComponent, bool) {
	p.mu.Lock()
	if p.snapshot == nil {
		p.mu.Unlock()
		return nil, nil, false
	}
	source := p.snapshot
	enabled := p.enabled
	p.mu.Unlock()
	f := p.currentFrame()

	snap := source()
	embed := StatusEmbed(snap, species.Get(snap.SpeciesID), f, p.assetBaseURL)
	return embed, panelButtons(enabled, snap.SoundEnabled), true
}

// panelButtons lays the actions out five to a row, with the sound toggle last.
func panelButtons(enabled, soundOn bool) []discordgo.MessageComponent {
	var buttons []discordgo.MessageComponent
	for _, a := range rules.Order {
		buttons = append(buttons, discordgo.Button{
			Label:    actionLabel(a),
			Style:    discordgo.PrimaryButton,
			CustomID: actionPrefix + string(a),
			Disabled: !enabled,
		})
	}
	sound := discordgo.Button{Label: "🔊 Sound on", Style: discordgo.SecondaryButton, CustomID: soundToggle}
	if !soundOn {
		sound.Label = "🔇 Sound off"
	}
	buttons = append(buttons, sound)

	var rows []discordgo.MessageComponent
	for len(buttons) > 0 {
		n := min(5, len(buttons))
		rows = append(rows, discordgo.ActionsRow{Components: buttons[:n]})
		buttons = buttons[n:]
	}
	return rows
}

func actionLabel(a rules.Action) string {
	s := string(a)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// parseCustomID splits a button ID into an action, or reports the sound toggle.
func parseCustomID(id string) (action rules.Action, sound bool, ok bool) {
	if id == soundToggle {
		return "", true, true
	}
	if name, found := strings.CutPrefix(id, actionPrefix); found && name != "" {
		return rules.Action(name), false, true
	}
	return "", false, false
}
