package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/runewatch/runewatch/internal/config"
	"github.com/runewatch/runewatch/internal/encode"
	"github.com/runewatch/runewatch/internal/history"
	"github.com/runewatch/runewatch/internal/logging"
	"github.com/runewatch/runewatch/internal/pipeline"
)

var Version = "0.1.0"

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	// A .env file in the working directory overlays the environment; its
	// absence is fine.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting runewatch",
		"version", Version,
		"screenshots_dir", logging.SanitizePath(cfg.ScreenshotsDir()),
		"output", cfg.OutputVideo(),
	)

	// Render history is best-effort; a broken database disables it but
	// never blocks a render.
	var repo history.Repository
	database, err := history.New(cfg.DBPath(), logger)
	if err != nil {
		logger.Warn("render history unavailable", "error", err)
	} else {
		defer database.Close()
		repo = history.NewRepository(database.Conn())
	}

	p := pipeline.New(
		pipeline.Config{
			ScreenshotsDir:    cfg.ScreenshotsDir(),
			SourceFPS:         cfg.Framerate(),
			OutputFPS:         cfg.OutputFPS(),
			OutputPath:        cfg.OutputVideo(),
			Quality:           cfg.VideoQuality(),
			EncoderPreference: cfg.VideoEncoder(),
			MusicFile:         cfg.MusicFile(),
			HoldLastFrame:     cfg.HoldLastFrame(),
			Blur: encode.BlurBox{
				Enabled: cfg.BlurEnabled(),
				X:       cfg.BlurX(),
				Y:       cfg.BlurY(),
				Width:   cfg.BlurWidth(),
				Height:  cfg.BlurHeight(),
				Sigma:   cfg.BlurAmount(),
			},
		},
		encode.NewFFprobe(logger),
		encode.NewBinaryProber(logger),
		encode.NewFFmpeg(logger),
		repo,
		logger,
	)

	if err := p.Run(context.Background()); err != nil {
		if errors.Is(err, pipeline.ErrNoFrames) {
			logger.Error("nothing to render", "error", err)
			return err
		}
		return err
	}
	return nil
}
