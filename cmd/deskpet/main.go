package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moorebrett0/deskpet/internal/anim"
	"github.com/moorebrett0/deskpet/internal/audio"
	"github.com/moorebrett0/deskpet/internal/brain"
	"github.com/moorebrett0/deskpet/internal/config"
	"github.com/moorebrett0/deskpet/internal/cue"
	"github.com/moorebrett0/deskpet/internal/discord"
	"github.com/moorebrett0/deskpet/internal/drift"
	"github.com/moorebrett0/deskpet/internal/onboarding"
	"github.com/moorebrett0/deskpet/internal/rules"
	"github.com/moorebrett0/deskpet/internal/sched"
	"github.com/moorebrett0/deskpet/internal/shell"
	"github.com/moorebrett0/deskpet/internal/storage"
	"github.com/moorebrett0/deskpet/internal/widget"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "deskpet.yaml", "path to the YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		slog.Error("deskpet: fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	store, closeStore, backend := storage.OpenOrMemory(cfg.Pet.Storage, cfg.Pet.StatePath)
	defer func() {
		if err := closeStore(); err != nil {
			slog.Warn("deskpet: closing storage", "err", err)
		}
	}()

	anims, err := anim.LoadCatalog(cfg.AnimationCatalog)
	if anims == nil {
		return err
	}
	if err != nil {
		slog.Warn("deskpet: some animations were dropped", "err", err)
	}

	var player audio.Player
	if cfg.Audio.Player != "" {
		p, err := shell.New(cfg.Audio.Player, cfg.Audio.MaxLength)
		if err != nil {
			slog.Warn("deskpet: sound playback disabled", "err", err)
		} else {
			player = p
		}
	}
	sounds := audio.NewLibrary(cfg.Audio.Dir, cfg.Audio.Ext, player)

	var (
		bot      *discord.Bot
		ui       widget.UI
		presence cue.PresenceUpdater
	)
	if cfg.Headless() {
		slog.Info("deskpet: no discord token, running headless")
		ui = widget.NewLogUI()
	} else {
		bot, err = discord.NewBot(discord.BotConfig{
			Token:             cfg.Discord.BotToken,
			ChannelID:         cfg.Discord.ChannelID,
			OwnerIDs:          cfg.Discord.OwnerIDs,
			AllowSpectatorPet: cfg.Discord.AllowSpectatorPet,
			AssetBaseURL:      cfg.Discord.AssetBaseURL,
			EditInterval:      cfg.Discord.EditInterval,
		})
		if err != nil {
			return err
		}
		ui = bot.Panel()
		presence = bot
	}

	loop := sched.NewLoop()
	ctrl, err := widget.New(store, loop, ui, sounds, widget.Config{
		Animations: anims,
		Director:   anim.DirectorConfig{SwimBurstEvery: cfg.Timing.SwimBurstEvery},
		Drift: drift.Config{
			Tick:        cfg.Timing.Tick,
			SleepWindow: cfg.Timing.SleepWindow,
		},
		Rules: rules.Config{
			Lock:        cfg.Timing.ActionLock,
			SleepWindow: cfg.Timing.SleepWindow,
			OnRoam:      func() { slog.Info("deskpet: pet wandered off to roam") },
		},
		Cue:      cfg.Cue,
		Presence: presence,
	})
	if err != nil {
		return err
	}

	term := &onboarding.Terminal{In: os.Stdin, Out: os.Stdout, Delay: 30 * time.Millisecond}
	hatched := false
	if !ctrl.State().IsOnboarded() {
		if cfg.Pet.Name != "" && cfg.Pet.Species != "" {
			ctrl.Rename(cfg.Pet.Name, cfg.Pet.Species)
		} else {
			id, err := term.Run()
			if err != nil {
				return fmt.Errorf("onboarding: %w", err)
			}
			ctrl.Rename(id.Name, id.SpeciesID)
		}
		hatched = true
	}

	b := brain.New(ctx, brain.Config{
		ClaudeAPIKey: cfg.Claude.APIKey,
		ClaudeModel:  cfg.Claude.Model,
		GeminiAPIKey: cfg.Gemini.APIKey,
		GeminiModel:  cfg.Gemini.Model,
		Provider:     cfg.AI.Provider,
		MaxTokens:    cfg.Claude.MaxTokens,
		MaxTools:     cfg.Claude.MaxTools,
		RateLimit:    cfg.Claude.RateLimit,
		RateWindow:   cfg.Claude.RateWindow,
	}, ctrl.State(), ctrl)

	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.Run(loopCtx)
	}()
	defer func() {
		stopLoop()
		<-loopDone
	}()

	if err := loop.Call(ctx, ctrl.Start); err != nil {
		return fmt.Errorf("start widget: %w", err)
	}

	botErr := make(chan error, 1)
	if bot != nil {
		bot.Panel().SetSource(ctrl.Snapshot)
		bot.SetRouter(discord.NewRouter(bot, ctrl, loop, b, cfg.Discord.AssetBaseURL))
		if hatched {
			bot.IntroduceOnStart(ctrl.Snapshot)
		}
		go func() { botErr <- bot.Start(ctx) }()
	}

	if hatched {
		term.PrintStartup(ctrl.Snapshot().Name, backend, b != nil, bot != nil)
	}
	slog.Info("deskpet: running", "name", ctrl.Snapshot().Name, "storage", backend)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-botErr:
		if err != nil {
			runErr = fmt.Errorf("discord: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := loop.Call(shutdownCtx, ctrl.Stop); err != nil && !errors.Is(err, sched.ErrStopped) {
		slog.Warn("deskpet: saving on shutdown", "err", err)
	}
	if bot != nil && runErr == nil {
		bot.Stop()
		select {
		case <-botErr:
		case <-shutdownCtx.Done():
		}
	}

	slog.Info("deskpet: goodbye")
	return runErr
}
