package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Versifine/knights/internal/audio"
	"github.com/Versifine/knights/internal/clock"
	"github.com/Versifine/knights/internal/config"
	"github.com/Versifine/knights/internal/event"
	"github.com/Versifine/knights/internal/frontend/console"
	"github.com/Versifine/knights/internal/frontend/terminal"
	"github.com/Versifine/knights/internal/frontend/window"
	"github.com/Versifine/knights/internal/game"
	"github.com/Versifine/knights/internal/input"
	"github.com/Versifine/knights/internal/logger"
)

const pumpInterval = 50 * time.Millisecond

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	frontendKind := flag.String("frontend", "", "override frontend.kind (window, terminal, console)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *frontendKind != "" {
		cfg.Frontend.Kind = *frontendKind
		if err := cfg.Validate(); err != nil {
			slog.Error("Invalid frontend override", "error", err)
			os.Exit(1)
		}
	}

	// Terminal frontends own stdout, so logs go to the configured file there.
	logCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}
	if logCfg.Format == "" {
		logCfg.Format = "console"
	}
	if cfg.Frontend.Kind != "window" && logCfg.File == "" {
		logCfg.File = "knights.log"
	}
	if err := logger.Init(logCfg); err != nil {
		slog.Error("Failed to init logger", "error", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Close() }()

	if err := run(cfg); err != nil {
		slog.Error("Knights exited with error", "error", err)
		_ = logger.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bindings := input.DefaultBindings()
	if len(cfg.Keys) > 0 {
		parsed, err := input.ParseBindings(cfg.Keys)
		if err != nil {
			return fmt.Errorf("parse key bindings: %w", err)
		}
		bindings = parsed
	}

	bus := event.NewBus()
	player := audio.NewPlayer(audio.Params{
		Enabled:    cfg.Audio.Enabled,
		SampleRate: cfg.Audio.SampleRate,
		Volume:     cfg.Audio.Volume,
	})
	if err := player.Init(); err != nil {
		slog.Warn("Audio unavailable, continuing without sound", "error", err)
	}
	defer player.Close()
	player.Subscribe(bus)

	session, err := game.FromConfig(cfg, clock.Real{}, bus)
	if err != nil {
		return err
	}
	defer session.Close()
	session.Start()
	go pump(ctx, session)

	slog.Info("Knights started", "frontend", cfg.Frontend.Kind, "bound", cfg.World.Bound, "enemies", cfg.Enemies.Count)

	switch cfg.Frontend.Kind {
	case "console":
		return console.NewConsole(session, bindings, cfg.Frontend.TickRate, cfg.Frontend.Pulse).Start(ctx)
	case "terminal":
		screen, err := terminal.Open()
		if err != nil {
			return err
		}
		return terminal.NewView(session, screen, bindings, cfg.Frontend.TickRate, cfg.Frontend.Pulse).Run(ctx)
	default:
		return window.Run(ctx, session, window.Options{
			Title:    cfg.Frontend.Title,
			Width:    cfg.Frontend.Width,
			Height:   cfg.Frontend.Height,
			TickRate: cfg.Frontend.TickRate,
			Bindings: bindings,
		})
	}
}

// pump keeps scheduled restores and asset loads moving while the frontend
// is not producing frames, e.g. a minimized window. It wakes early when a
// scheduled restore is due before the next interval.
func pump(ctx context.Context, session *game.Session) {
	timer := time.NewTimer(pumpInterval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			session.Pump()
			timer.Reset(pumpWait(session))
		}
	}
}

func pumpWait(session *game.Session) time.Duration {
	due, ok := session.NextDue()
	if !ok {
		return pumpInterval
	}
	return max(0, min(pumpInterval, time.Until(due)))
}
