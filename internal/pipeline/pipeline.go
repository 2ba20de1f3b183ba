// Package pipeline runs one timelapse assembly end to end: index frames,
// compute timing, serialize the manifest, build the ffmpeg directive and
// hand it to the delegate. Each run is a fresh, self-contained invocation
// with no shared state.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/runewatch/runewatch/internal/encode"
	"github.com/runewatch/runewatch/internal/frames"
	"github.com/runewatch/runewatch/internal/history"
	"github.com/runewatch/runewatch/internal/logging"
	"github.com/runewatch/runewatch/internal/timing"
)

// ErrNoFrames is the terminal empty-result condition: no screenshots with a
// valid timestamp were found, so there is nothing to render. It is distinct
// from a processing error and the delegate is never invoked.
var ErrNoFrames = errors.New("no screenshots with valid timestamps found")

// Config is the per-run pipeline configuration, captured once at startup.
type Config struct {
	ScreenshotsDir    string
	SourceFPS         int
	OutputFPS         int
	OutputPath        string
	Quality           string
	EncoderPreference string
	MusicFile         string
	HoldLastFrame     bool
	Blur              encode.BlurBox
}

type Pipeline struct {
	cfg      Config
	audio    timing.AudioProber
	encoders encode.Prober
	delegate encode.Delegate
	repo     history.Repository // nil disables render history
	logger   *slog.Logger
}

func New(cfg Config, audio timing.AudioProber, encoders encode.Prober, delegate encode.Delegate, repo history.Repository, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		audio:    audio,
		encoders: encoders,
		delegate: delegate,
		repo:     repo,
		logger:   logger,
	}
}

// Run executes a single render. The temporary manifest is removed after the
// delegated invocation regardless of its outcome.
func (p *Pipeline) Run(ctx context.Context) error {
	codec := encode.SelectEncoder(p.cfg.EncoderPreference, p.encoders, p.logger)

	seq, err := frames.Index(p.cfg.ScreenshotsDir, p.logger)
	if err != nil {
		return fmt.Errorf("frame indexing failed: %w", err)
	}
	if len(seq) == 0 {
		return ErrNoFrames
	}

	audioPath := p.resolveMusicFile()

	plan := timing.Compute(len(seq), p.cfg.SourceFPS, p.audio, audioPath, p.cfg.HoldLastFrame, p.logger)
	p.logger.Info("timing computed",
		"frames", plan.FrameCount,
		"video_duration_s", plan.VideoDuration,
		"audio_duration_s", plan.AudioDuration,
		"pad_duration_s", plan.PadDuration,
	)

	manifestPath, err := encode.WriteManifest(seq)
	if err != nil {
		return fmt.Errorf("manifest serialization failed: %w", err)
	}
	defer func() {
		if err := os.Remove(manifestPath); err != nil {
			p.logger.Warn("could not remove manifest", "path", manifestPath, "error", err)
		}
	}()

	args := encode.BuildArgs(encode.GraphConfig{
		ManifestPath:  manifestPath,
		OutputFPS:     p.cfg.OutputFPS,
		Plan:          plan,
		AudioPath:     audioPath,
		HoldLastFrame: p.cfg.HoldLastFrame,
		Blur:          p.cfg.Blur,
		Codec:         codec,
		Quality:       p.cfg.Quality,
		OutputPath:    p.cfg.OutputPath,
	})

	renderID := p.recordStart(ctx, plan, codec)
	logger := logging.WithRenderID(p.logger, renderID)

	result, err := p.delegate.Render(ctx, args)
	if err != nil {
		p.recordFinish(ctx, renderID, history.RenderStatusFailed, err.Error(), result.Duration)
		return fmt.Errorf("media engine invocation failed: %w", err)
	}
	if !result.IsSuccess() {
		p.recordFinish(ctx, renderID, history.RenderStatusFailed,
			fmt.Sprintf("ffmpeg exited %d", result.ExitCode), result.Duration)
		return fmt.Errorf("ffmpeg exited %d: %s", result.ExitCode, result.StderrTail)
	}

	p.recordFinish(ctx, renderID, history.RenderStatusCompleted, "", result.Duration)
	logger.Info("timelapse created",
		"output", p.cfg.OutputPath,
		"frames", plan.FrameCount,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return nil
}

// resolveMusicFile returns the configured audio path only when it exists on
// disk; a configured but missing file logs a warning and disables audio.
func (p *Pipeline) resolveMusicFile() string {
	if p.cfg.MusicFile == "" {
		return ""
	}
	if _, err := os.Stat(p.cfg.MusicFile); err != nil {
		p.logger.Warn("music file not found, proceeding without music",
			"path", p.cfg.MusicFile)
		return ""
	}
	return p.cfg.MusicFile
}

// recordStart creates the history row for this render attempt. History
// failures are logged and ignored, they never block a render.
func (p *Pipeline) recordStart(ctx context.Context, plan timing.Plan, codec string) string {
	if p.repo == nil {
		return ""
	}
	now := time.Now()
	rec := &history.Render{
		ID:            history.NewID(),
		FrameCount:    plan.FrameCount,
		VideoDuration: plan.VideoDuration,
		PadDuration:   plan.PadDuration,
		Encoder:       codec,
		OutputPath:    p.cfg.OutputPath,
		Status:        history.RenderStatusRunning,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := p.repo.CreateRender(ctx, rec); err != nil {
		p.logger.Warn("could not record render start", "error", err)
		return ""
	}
	return rec.ID
}

func (p *Pipeline) recordFinish(ctx context.Context, id, status, errMsg string, elapsed time.Duration) {
	if p.repo == nil || id == "" {
		return
	}
	if err := p.repo.UpdateRenderStatus(ctx, id, status, errMsg, elapsed.Milliseconds()); err != nil {
		p.logger.Warn("could not record render outcome", "error", err)
	}
}
