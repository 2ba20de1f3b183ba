// Package encode builds the declarative ffmpeg directive for a timelapse
// render (inputs, filter graph, stream maps, encoding parameters) and
// provides the external collaborators that surround it: encoder
// availability probing, audio duration probing, manifest serialization and
// the delegated ffmpeg invocation itself. No pixel processing happens in
// this process.
package encode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/runewatch/runewatch/internal/timing"
)

// BlurBox is the region-obscuring effect configuration: a fixed pixel
// rectangle that is blurred in every frame while the rest stays untouched.
type BlurBox struct {
	Enabled bool
	X       int
	Y       int
	Width   int
	Height  int
	Sigma   int // gaussian blur strength
}

// GraphConfig is everything the command graph builder needs for one run.
type GraphConfig struct {
	ManifestPath  string
	OutputFPS     int
	Plan          timing.Plan
	AudioPath     string // empty = no audio input
	HoldLastFrame bool
	Blur          BlurBox
	Codec         string
	Quality       string
	OutputPath    string
}

// Encoder identifiers the builder knows quality-parameter names for.
// Anything outside this set gets no quality flag at all; the acceptable
// parameter names are encoder-specific and not safely inferable.
const (
	CodecX264  = "libx264"
	CodecNVENC = "h264_nvenc"
	CodecAMF   = "h264_amf"
	CodecQSV   = "h264_qsv"
)

// filterStage is one node of the filter graph: an expression reading from
// named virtual streams and writing to named virtual streams. Stages are
// appended conditionally and joined in order, each declaring its input based
// on what preceded it.
type filterStage struct {
	expr string
}

// BuildArgs constructs the full ffmpeg argument list for a render. The
// directive is built once per run, handed whole to the delegate and then
// discarded.
func BuildArgs(cfg GraphConfig) []string {
	args := []string{
		"-r", strconv.Itoa(cfg.Plan.SourceFPS),
		"-f", "concat",
		"-safe", "0",
		"-i", cfg.ManifestPath,
	}

	// Secondary audio input. Hold-last-frame plays the track once at full
	// length; loop-and-cut repeats it forever and clamps the output to the
	// video duration (and again to the shorter stream at mapping time).
	switch {
	case cfg.AudioPath != "" && cfg.HoldLastFrame:
		args = append(args, "-i", cfg.AudioPath)
	case cfg.AudioPath != "":
		args = append(args, "-t", formatSeconds(cfg.Plan.VideoDuration))
		args = append(args, "-stream_loop", "-1", "-i", cfg.AudioPath)
	default:
		args = append(args, "-t", formatSeconds(cfg.Plan.VideoDuration))
	}

	args = append(args, "-filter_complex", buildFilterGraph(cfg))

	args = append(args, "-map", "[v_out]")
	if cfg.AudioPath != "" {
		args = append(args, "-map", "1:a:0", "-c:a", "aac")
		if !cfg.HoldLastFrame {
			args = append(args, "-shortest")
		}
	}

	args = append(args, "-c:v", cfg.Codec)
	switch cfg.Codec {
	case CodecX264:
		// Software encoding uses a constant rate factor.
		args = append(args, "-crf", cfg.Quality)
	case CodecNVENC, CodecAMF, CodecQSV:
		// Hardware encoders take a constant-quality level instead.
		args = append(args, "-cq", cfg.Quality)
	}

	args = append(args,
		"-pix_fmt", "yuv420p",
		"-y",
		cfg.OutputPath,
	)
	return args
}

// buildFilterGraph assembles the video filter chain as an ordered stage
// list with named virtual streams. The normalization stage's output label
// depends on whether a padding stage follows, so the wiring stays
// consistent regardless of which optional stages are active.
func buildFilterGraph(cfg GraphConfig) string {
	var stages []filterStage
	in := "[0:v]"

	if cfg.Blur.Enabled {
		b := cfg.Blur
		stages = append(stages, filterStage{expr: fmt.Sprintf(
			"%ssplit[main][to_blur];"+
				"[to_blur]crop=%d:%d:%d:%d,gblur=sigma=%d[blurred_box];"+
				"[main][blurred_box]overlay=%d:%d[v_blurred]",
			in, b.Width, b.Height, b.X, b.Y, b.Sigma, b.X, b.Y)})
		in = "[v_blurred]"
	}

	// Even dimensions are required by yuv420p chroma subsampling.
	cropOut := "[v_out]"
	if cfg.Plan.PadDuration > 0 {
		cropOut = "[v_cropped]"
	}
	stages = append(stages, filterStage{expr: fmt.Sprintf(
		"%scrop=floor(iw/2)*2:floor(ih/2)*2,fps=%d%s", in, cfg.OutputFPS, cropOut)})

	if cfg.Plan.PadDuration > 0 {
		stages = append(stages, filterStage{expr: fmt.Sprintf(
			"[v_cropped]tpad=stop_mode=clone:stop_duration=%s[v_out]",
			formatSeconds(cfg.Plan.PadDuration))})
	}

	exprs := make([]string, len(stages))
	for i, s := range stages {
		exprs[i] = s.expr
	}
	return strings.Join(exprs, ";")
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
