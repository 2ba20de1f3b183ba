// Package config provides configuration management for runewatch.
// Configuration is loaded from environment variables (optionally overlaid
// from a .env file by the caller) with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// Default values
	DefaultLogLevel    = "info"
	DefaultDataDir     = ".runewatch"
	DefaultFramerate   = 5
	DefaultOutputFPS   = 30
	DefaultOutputVideo = "account_timelapse.mp4"
	DefaultQuality     = "23"
	DefaultEncoder     = "auto"
	DefaultBlurX       = 7
	DefaultBlurY       = 740
	DefaultBlurWidth   = 512
	DefaultBlurHeight  = 110
	DefaultBlurAmount  = 15

	// Environment variable names
	EnvScreenshotsDir = "RUNEWATCH_SCREENSHOTS_DIR"
	EnvFramerate      = "RUNEWATCH_FRAMERATE"
	EnvOutputFPS      = "RUNEWATCH_OUTPUT_FPS"
	EnvOutputVideo    = "RUNEWATCH_OUTPUT_VIDEO"
	EnvVideoQuality   = "RUNEWATCH_VIDEO_QUALITY"
	EnvVideoEncoder   = "RUNEWATCH_VIDEO_ENCODER"
	EnvMusicFile      = "RUNEWATCH_MUSIC_FILE"
	EnvHoldLastFrame  = "RUNEWATCH_HOLD_LAST_FRAME"
	EnvBlurEnabled    = "RUNEWATCH_BLUR_ENABLED"
	EnvBlurX          = "RUNEWATCH_BLUR_X"
	EnvBlurY          = "RUNEWATCH_BLUR_Y"
	EnvBlurWidth      = "RUNEWATCH_BLUR_WIDTH"
	EnvBlurHeight     = "RUNEWATCH_BLUR_HEIGHT"
	EnvBlurAmount     = "RUNEWATCH_BLUR_AMOUNT"
	EnvLogLevel       = "RUNEWATCH_LOG_LEVEL"
	EnvDataDir        = "RUNEWATCH_DATA_DIR"

	// Database filename
	DBFilename = "runewatch.db"
)

// Config defines the application configuration interface
type Config interface {
	ScreenshotsDir() string
	Framerate() int
	OutputFPS() int
	OutputVideo() string
	VideoQuality() string
	VideoEncoder() string
	MusicFile() string
	HoldLastFrame() bool
	BlurEnabled() bool
	BlurX() int
	BlurY() int
	BlurWidth() int
	BlurHeight() int
	BlurAmount() int
	LogLevel() string
	DataDir() string
	DBPath() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	screenshotsDir string
	framerate      int
	outputFPS      int
	outputVideo    string
	videoQuality   string
	videoEncoder   string
	musicFile      string
	holdLastFrame  bool
	blurEnabled    bool
	blurX          int
	blurY          int
	blurWidth      int
	blurHeight     int
	blurAmount     int
	logLevel       string
	dataDir        string
}

// New creates a new EnvConfig with defaults and environment variable overrides.
// The screenshots directory is required and must exist; this is the only
// configuration error that aborts before any processing begins.
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		framerate:     DefaultFramerate,
		outputFPS:     DefaultOutputFPS,
		outputVideo:   DefaultOutputVideo,
		videoQuality:  DefaultQuality,
		videoEncoder:  DefaultEncoder,
		holdLastFrame: true,
		blurEnabled:   true,
		blurX:         DefaultBlurX,
		blurY:         DefaultBlurY,
		blurWidth:     DefaultBlurWidth,
		blurHeight:    DefaultBlurHeight,
		blurAmount:    DefaultBlurAmount,
		logLevel:      DefaultLogLevel,
		dataDir:       defaultDataDir(),
	}

	cfg.screenshotsDir = os.Getenv(EnvScreenshotsDir)
	if cfg.screenshotsDir == "" {
		return nil, fmt.Errorf("%s must be set", EnvScreenshotsDir)
	}
	info, err := os.Stat(cfg.screenshotsDir)
	if err != nil {
		return nil, fmt.Errorf("screenshots directory does not exist: %s", cfg.screenshotsDir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("screenshots path is not a directory: %s", cfg.screenshotsDir)
	}

	if err := overrideInt(EnvFramerate, &cfg.framerate); err != nil {
		return nil, err
	}
	if cfg.framerate < 1 {
		return nil, fmt.Errorf("invalid %s: framerate must be positive", EnvFramerate)
	}

	if err := overrideInt(EnvOutputFPS, &cfg.outputFPS); err != nil {
		return nil, err
	}
	if cfg.outputFPS < 1 {
		return nil, fmt.Errorf("invalid %s: output fps must be positive", EnvOutputFPS)
	}

	if ov := os.Getenv(EnvOutputVideo); ov != "" {
		cfg.outputVideo = ov
	}
	if q := os.Getenv(EnvVideoQuality); q != "" {
		cfg.videoQuality = q
	}
	if e := os.Getenv(EnvVideoEncoder); e != "" {
		cfg.videoEncoder = e
	}

	cfg.musicFile = os.Getenv(EnvMusicFile)

	if err := overrideBool(EnvHoldLastFrame, &cfg.holdLastFrame); err != nil {
		return nil, err
	}
	if err := overrideBool(EnvBlurEnabled, &cfg.blurEnabled); err != nil {
		return nil, err
	}

	for _, o := range []struct {
		env string
		dst *int
	}{
		{EnvBlurX, &cfg.blurX},
		{EnvBlurY, &cfg.blurY},
		{EnvBlurWidth, &cfg.blurWidth},
		{EnvBlurHeight, &cfg.blurHeight},
		{EnvBlurAmount, &cfg.blurAmount},
	} {
		if err := overrideInt(o.env, o.dst); err != nil {
			return nil, err
		}
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	return cfg, nil
}

func overrideInt(env string, dst *int) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	*dst = n
	return nil
}

func overrideBool(env string, dst *bool) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	*dst = b
	return nil
}

// ScreenshotsDir returns the root directory scanned for frames
func (c *EnvConfig) ScreenshotsDir() string {
	return c.screenshotsDir
}

// Framerate returns the source frame rate of the image sequence
func (c *EnvConfig) Framerate() int {
	return c.framerate
}

// OutputFPS returns the target output frame rate
func (c *EnvConfig) OutputFPS() int {
	return c.outputFPS
}

// OutputVideo returns the output video file path
func (c *EnvConfig) OutputVideo() string {
	return c.outputVideo
}

// VideoQuality returns the encoder quality value (crf/cq scale)
func (c *EnvConfig) VideoQuality() string {
	return c.videoQuality
}

// VideoEncoder returns the encoder preference token
// (auto, nvidia, amd, intel, cpu)
func (c *EnvConfig) VideoEncoder() string {
	return c.videoEncoder
}

// MusicFile returns the optional background audio file path
func (c *EnvConfig) MusicFile() string {
	return c.musicFile
}

// HoldLastFrame reports whether the video is padded to cover the full
// audio track, as opposed to looping the audio and cutting at video length
func (c *EnvConfig) HoldLastFrame() bool {
	return c.holdLastFrame
}

func (c *EnvConfig) BlurEnabled() bool {
	return c.blurEnabled
}

func (c *EnvConfig) BlurX() int {
	return c.blurX
}

func (c *EnvConfig) BlurY() int {
	return c.blurY
}

func (c *EnvConfig) BlurWidth() int {
	return c.blurWidth
}

func (c *EnvConfig) BlurHeight() int {
	return c.blurHeight
}

func (c *EnvConfig) BlurAmount() int {
	return c.blurAmount
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite render history database
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
