package encode

import (
	"log/slog"
	"os/exec"
	"strings"
)

// Prober reports whether a named ffmpeg encoder is available. A probe
// failure counts as unavailable.
type Prober interface {
	Available(codec string) bool
}

// BinaryProber checks encoder availability by running the real ffmpeg
// binary and searching its encoder listing.
type BinaryProber struct {
	logger *slog.Logger
}

func NewBinaryProber(logger *slog.Logger) *BinaryProber {
	return &BinaryProber{logger: logger}
}

func (p *BinaryProber) Available(codec string) bool {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").Output()
	if err != nil {
		if p.logger != nil {
			p.logger.Debug("encoder probe failed", "error", err)
		}
		return false
	}
	return strings.Contains(string(out), codec)
}

type encoderOption struct {
	codec string
	name  string
}

var encoderMap = map[string]encoderOption{
	"nvidia": {CodecNVENC, "NVIDIA GPU"},
	"amd":    {CodecAMF, "AMD GPU"},
	"intel":  {CodecQSV, "Intel GPU"},
	"cpu":    {CodecX264, "CPU"},
}

// hardware vendors tried during auto-detection, in preference order
var autoDetectOrder = []string{"nvidia", "amd", "intel"}

// SelectEncoder resolves an encoder preference token (auto, nvidia, amd,
// intel, cpu) to a concrete codec identifier. An explicit vendor preference
// whose encoder is unavailable drops straight to software encoding;
// auto-detection of GPU encoders only runs for "auto" or unrecognized
// tokens. The final fallback is always software encoding.
func SelectEncoder(preference string, prober Prober, logger *slog.Logger) string {
	pref := strings.ToLower(preference)

	if opt, ok := encoderMap[pref]; ok {
		if pref == "cpu" || prober.Available(opt.codec) {
			if logger != nil {
				logger.Info("using encoder", "name", opt.name, "codec", opt.codec)
			}
			return opt.codec
		}
		if logger != nil {
			logger.Warn("preferred encoder not available", "name", opt.name, "codec", opt.codec)
		}
	}

	if _, explicit := encoderMap[pref]; !explicit {
		if logger != nil {
			logger.Info("auto-detecting GPU encoder")
		}
		for _, key := range autoDetectOrder {
			opt := encoderMap[key]
			if prober.Available(opt.codec) {
				if logger != nil {
					logger.Info("GPU encoder detected", "name", opt.name, "codec", opt.codec)
				}
				return opt.codec
			}
		}
	}

	if logger != nil {
		logger.Info("GPU encoding not available, falling back to CPU", "codec", CodecX264)
	}
	return CodecX264
}
