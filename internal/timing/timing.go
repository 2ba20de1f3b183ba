// Package timing reconciles the image-sequence duration with an optional
// background audio track and decides how much end-padding the video needs.
package timing

import "log/slog"

// AudioProber reports the duration of an audio file in seconds.
type AudioProber interface {
	Duration(path string) (float64, error)
}

// Plan is the derived timing arithmetic for a single run. It is recomputed
// per run and never persisted.
type Plan struct {
	FrameCount    int
	SourceFPS     int
	VideoDuration float64 // seconds, FrameCount / SourceFPS
	AudioDuration float64 // seconds, 0 when unknown or not probed
	PadDuration   float64 // seconds of last-frame hold appended to the video
}

// Compute derives the timing plan. The audio duration is only probed under
// the hold-last-frame policy with an audio path configured; a probe failure
// degrades to duration 0 (no padding) with a warning, it is never fatal.
// Under the loop-and-cut policy the video length is authoritative and no
// padding is ever computed.
func Compute(frameCount, sourceFPS int, prober AudioProber, audioPath string, holdLastFrame bool, logger *slog.Logger) Plan {
	plan := Plan{
		FrameCount:    frameCount,
		SourceFPS:     sourceFPS,
		VideoDuration: float64(frameCount) / float64(sourceFPS),
	}

	if audioPath == "" || !holdLastFrame {
		return plan
	}

	duration, err := prober.Duration(audioPath)
	if err != nil {
		if logger != nil {
			logger.Warn("could not probe audio duration, assuming 0",
				"path", audioPath, "error", err)
		}
		duration = 0
	}
	plan.AudioDuration = duration

	if duration > plan.VideoDuration {
		plan.PadDuration = duration - plan.VideoDuration
	}
	return plan
}
