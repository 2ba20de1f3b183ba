package encode

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
)

// FFprobe measures media durations with the external ffprobe binary.
type FFprobe struct {
	logger *slog.Logger
}

func NewFFprobe(logger *slog.Logger) *FFprobe {
	return &FFprobe{logger: logger}
}

type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration returns the duration of an audio file in seconds. Any failure
// (missing binary, unreadable file, malformed output) is returned as an
// error; callers are expected to degrade, not abort.
func (p *FFprobe) Duration(path string) (float64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(out []byte) (float64, error) {
	var pf probeFormat
	if err := json.Unmarshal(out, &pf); err != nil {
		return 0, fmt.Errorf("cannot parse ffprobe output: %w", err)
	}
	if pf.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe output missing duration")
	}
	d, err := strconv.ParseFloat(pf.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse duration %q: %w", pf.Format.Duration, err)
	}
	return d, nil
}
