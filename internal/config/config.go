package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/moorebrett0/deskpet/internal/cue"
	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/storage"
)

type Config struct {
	Discord DiscordConfig `yaml:"discord"`
	AI      AIConfig      `yaml:"ai"`
	Claude  ClaudeConfig  `yaml:"claude"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Pet     PetConfig     `yaml:"pet"`
	Timing  TimingConfig  `yaml:"timing"`
	Cue     cue.Config    `yaml:"cue"`
	Audio   AudioConfig   `yaml:"audio"`

	// AnimationCatalog overrides the built-in animation catalog.
	AnimationCatalog string `yaml:"animation_catalog" env:"DESKPET_ANIMATION_CATALOG"`
	LogLevel         string `yaml:"log_level"         env:"DESKPET_LOG_LEVEL"`
}

type AIConfig struct {
	Provider string `yaml:"provider" env:"AI_PROVIDER"` // "claude", "gemini", or "" (auto-detect)
}

// DiscordConfig is optional: with no token the pet runs headless.
type DiscordConfig struct {
	BotToken          string        `yaml:"bot_token"           env:"DISCORD_BOT_TOKEN"`
	ChannelID         string        `yaml:"channel_id"          env:"DISCORD_CHANNEL_ID"`
	OwnerIDs          []string      `yaml:"owner_ids"           env:"DISCORD_OWNER_IDS" envSeparator:","`
	AllowSpectatorPet bool          `yaml:"allow_spectator_pet"`
	EditInterval      time.Duration `yaml:"edit_interval"` // minimum gap between panel edits
	// AssetBaseURL prefixes animation assets so the panel can show them as images.
	AssetBaseURL string `yaml:"asset_base_url" env:"DISCORD_ASSET_BASE_URL"`
}

type ClaudeConfig struct {
	APIKey    string `yaml:"api_key"    env:"ANTHROPIC_API_KEY"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
	MaxTools  int    `yaml:"max_tool_iterations"`
	// Token bucket: RateLimit requests per RateWindow
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key" env:"GOOGLE_API_KEY"`
	Model  string `yaml:"model"`
}

type PetConfig struct {
	Storage   string `yaml:"storage"    env:"DESKPET_STORAGE"` // file, sqlite or memory
	StatePath string `yaml:"state_path" env:"DESKPET_STATE_PATH"`
	// Name and Species skip onboarding when both are set.
	Name    string `yaml:"name"    env:"DESKPET_NAME"`
	Species string `yaml:"species" env:"DESKPET_SPECIES"`
}

type TimingConfig struct {
	Tick           time.Duration   `yaml:"tick" env:"DESKPET_TICK"` // one drift hour
	ActionLock     time.Duration   `yaml:"action_lock"`
	SleepWindow    pet.SleepWindow `yaml:"sleep_window"`
	SwimBurstEvery time.Duration   `yaml:"swim_burst_every"`
}

type AudioConfig struct {
	Dir       string        `yaml:"dir"     env:"DESKPET_SOUND_DIR"`
	Ext       string        `yaml:"ext"`
	Player    string        `yaml:"player"  env:"DESKPET_SOUND_PLAYER"` // e.g. "paplay"; empty disables playback
	MaxLength time.Duration `yaml:"max_length"`
}

// Load reads .env, then the YAML file at path (optional), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("config: could not read .env", "err", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Discord.OwnerIDs = cleanIDs(cfg.Discord.OwnerIDs)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Headless reports whether the pet runs without a Discord front end.
func (c *Config) Headless() bool {
	return c.Discord.BotToken == ""
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func cleanIDs(ids []string) []string {
	var cleaned []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			cleaned = append(cleaned, id)
		}
	}
	return cleaned
}

func defaults() *Config {
	return &Config{
		Discord: DiscordConfig{
			AllowSpectatorPet: true,
			EditInterval:      2 * time.Second,
		},
		Claude: ClaudeConfig{
			Model:      "claude-sonnet-4-5-20250929",
			MaxTokens:  512,
			MaxTools:   2,
			RateLimit:  10,
			RateWindow: time.Minute,
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Pet: PetConfig{
			Storage:   storage.BackendFile,
			StatePath: "state.json",
		},
		Timing: TimingConfig{
			Tick:           time.Hour,
			ActionLock:     1500 * time.Millisecond,
			SleepWindow:    pet.DefaultSleepWindow,
			SwimBurstEvery: 12 * time.Second,
		},
		Cue: cue.DefaultConfig(),
		Audio: AudioConfig{
			Dir:       "sounds",
			Ext:       ".ogg",
			MaxLength: 30 * time.Second,
		},
		LogLevel: "info",
	}
}

func validate(cfg *Config) error {
	if !cfg.Headless() {
		if cfg.Discord.ChannelID == "" {
			return fmt.Errorf("missing DISCORD_CHANNEL_ID (required with a bot token)")
		}
		if len(cfg.Discord.OwnerIDs) == 0 {
			return fmt.Errorf("missing DISCORD_OWNER_IDS (required with a bot token)")
		}
	}

	switch cfg.Pet.Storage {
	case storage.BackendFile, storage.BackendSQLite:
		if cfg.Pet.StatePath == "" {
			return fmt.Errorf("pet.state_path is required for %s storage", cfg.Pet.Storage)
		}
	case storage.BackendMemory:
	default:
		return fmt.Errorf("unknown pet.storage %q", cfg.Pet.Storage)
	}

	if cfg.Timing.Tick <= 0 {
		return fmt.Errorf("timing.tick must be positive")
	}
	if w := cfg.Timing.SleepWindow; w.StartHour < 0 || w.StartHour > 23 || w.EndHour < 0 || w.EndHour > 23 {
		return fmt.Errorf("timing.sleep_window hours must be within 0-23")
	}
	if cfg.Cue.Low >= cfg.Cue.High {
		return fmt.Errorf("cue.low (%d) must be below cue.high (%d)", cfg.Cue.Low, cfg.Cue.High)
	}
	return nil
}
