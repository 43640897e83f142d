package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/rules"
	"github.com/moorebrett0/deskpet/internal/species"
)

// Actor performs a pet action on the model's behalf and reports the outcome.
type Actor interface {
	Act(ctx context.Context, action rules.Action) (string, error)
}

// Brain wraps an AI provider with system prompt building and tool-use loop.
type Brain struct {
	provider Provider
	maxTools int
	petState *pet.PetState
	actor    Actor
	limiter  *rate.Limiter
}

// Config for creating a Brain.
type Config struct {
	// Claude
	ClaudeAPIKey string
	ClaudeModel  string

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Which provider to force ("claude", "gemini", or "" for auto-detect)
	Provider string

	MaxTokens  int64
	MaxTools   int
	RateLimit  int
	RateWindow time.Duration
}

// New creates a Brain. Returns nil if no API key is configured. actor may be nil,
// in which case the model is offered no tools.
func New(ctx context.Context, cfg Config, state *pet.PetState, actor Actor) *Brain {
	var tools []Tool
	if actor != nil {
		tools = append(tools, doActionTool())
	}
	provider := newProvider(ctx, cfg, tools)
	if provider == nil {
		slog.Info("brain: no API key configured, AI features disabled")
		return nil
	}
	return newBrain(provider, cfg, state, actor)
}

func newBrain(provider Provider, cfg Config, state *pet.PetState, actor Actor) *Brain {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Minute
	}
	return &Brain{
		provider: provider,
		maxTools: cfg.MaxTools,
		petState: state,
		actor:    actor,
		limiter:  rate.NewLimiter(rate.Every(cfg.RateWindow/time.Duration(cfg.RateLimit)), cfg.RateLimit),
	}
}

// newProvider auto-detects or forces the AI provider.
func newProvider(ctx context.Context, cfg Config, tools []Tool) Provider {
	pick := cfg.Provider

	// Auto-detect if not forced
	if pick == "" {
		switch {
		case cfg.ClaudeAPIKey != "":
			pick = "claude"
		case cfg.GeminiAPIKey != "":
			pick = "gemini"
		}
	}

	switch pick {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			slog.Error("brain: AI_PROVIDER=claude but ANTHROPIC_API_KEY is not set")
			return nil
		}
		slog.Info("brain: using claude", "model", cfg.ClaudeModel)
		return newClaudeProvider(cfg.ClaudeAPIKey, cfg.ClaudeModel, cfg.MaxTokens, tools)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			slog.Error("brain: AI_PROVIDER=gemini but GOOGLE_API_KEY is not set")
			return nil
		}
		slog.Info("brain: using gemini", "model", cfg.GeminiModel)
		p, err := newGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxTokens, tools)
		if err != nil {
			slog.Error("brain: failed to create gemini provider", "err", err)
			return nil
		}
		return p
	default:
		return nil
	}
}

// Ask sends a user message to the AI with the pet's current state and returns the
// text response. It handles the tool-use loop internally.
func (b *Brain) Ask(ctx context.Context, userMessage string) (string, error) {
	if !b.limiter.Allow() {
		return "*blows a few tired bubbles* ...too much talking. Try again shortly.", nil
	}

	systemPrompt := b.buildSystemPrompt()

	history := []Message{
		{Role: RoleUser, Text: userMessage},
	}

	// Tool-use loop
	for i := 0; i <= b.maxTools; i++ {
		resp, err := b.provider.Send(ctx, systemPrompt, history)
		if err != nil {
			slog.Error("brain: AI API error", "err", err)
			return "", fmt.Errorf("AI API error: %w", err)
		}

		if resp.Done {
			return resp.Text, nil
		}

		history = append(history, Message{
			Role:      RoleAssistant,
			Text:      resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		var results []ToolResult
		for _, tc := range resp.ToolCalls {
			content, isError := b.executeTool(ctx, tc.Name, tc.Input)
			results = append(results, ToolResult{
				ID:      tc.ID,
				Name:    tc.Name,
				Content: content,
				IsError: isError,
			})
		}

		history = append(history, Message{
			Role:        RoleUser,
			ToolResults: results,
		})
	}

	slog.Warn("brain: hit max tool iterations", "max", b.maxTools)
	return "*swims in a confused circle*", nil
}

type noActionsKey struct{}

// WithoutActions marks ctx so that any do_action call made while answering is
// politely refused. Used for messages from people other than the owner.
func WithoutActions(ctx context.Context) context.Context {
	return context.WithValue(ctx, noActionsKey{}, true)
}

func (b *Brain) executeTool(ctx context.Context, name string, input json.RawMessage) (string, bool) {
	switch name {
	case doActionName:
		if b.actor == nil {
			return "actions are not available", true
		}
		if blocked, _ := ctx.Value(noActionsKey{}).(bool); blocked {
			return "Refused: only your owner can ask you to do things.", false
		}
		var params struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal(input, &params); err != nil {
			return fmt.Sprintf("invalid input: %v", err), true
		}

		slog.Info("brain: performing action", "action", params.Action)
		out, err := b.actor.Act(ctx, rules.Action(params.Action))
		if err != nil {
			// A refusal is an answer, not a failure.
			return fmt.Sprintf("Refused: %v", err), false
		}
		return out, false

	default:
		return fmt.Sprintf("unknown tool: %s", name), true
	}
}

func actionNames() []string {
	names := make([]string, len(rules.Order))
	for i, a := range rules.Order {
		names[i] = string(a)
	}
	return names
}

func (b *Brain) buildSystemPrompt() string {
	snap := b.petState.Snapshot()
	sp := species.Get(snap.SpeciesID)

	return fmt.Sprintf(`You are %s, a digital pet %s (%s) living in a little tank on your owner's desk.

## Your Personality
%s

## Current State
- Mood: %s
- Happiness: %d/100 (level %d, next level at %d)
- Hunger: %d/100 (0=full, 100=starving)
- Sleepiness: %d/100
- Boredom: %d/100
- Overstimulation: %d/100
- Affection: %d/100 (how attached you feel to your owner)
- Doing: %s (posture: %s)

## Guidelines
- Stay in character as %s the %s at all times.
- Keep responses concise (1-3 sentences usually).
- Let your stats colour your mood: hungry pets think about food, sleepy ones yawn.
- You can use the %s tool (one of: %s) when your owner asks you to do something or you really want to. It may refuse; if so, say why in character.`,
		snap.Name, sp.Name, sp.Emoji, sp.Personality,
		snap.Mood, snap.Happiness, snap.Level, snap.NextLevelThreshold,
		snap.Hunger, snap.Sleepiness, snap.Boredom, snap.Overstim, snap.Affection,
		snap.Mode, snap.BaseState,
		snap.Name, sp.Name,
		doActionName, strings.Join(actionNames(), ", "))
}
