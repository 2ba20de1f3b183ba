package encode

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

const maxStderrBytes = 8 * 1024 // 8 KB tail of stderr kept for diagnostics

// RunResult is the structured outcome of a delegated ffmpeg invocation.
type RunResult struct {
	ExitCode   int
	StderrTail string // last N bytes of stderr
	Duration   time.Duration
}

// IsSuccess returns true when the delegate exited cleanly.
func (r RunResult) IsSuccess() bool { return r.ExitCode == 0 }

// Delegate executes a prepared directive. The media engine does all
// decode/filter/encode work; this process only describes it.
type Delegate interface {
	Render(ctx context.Context, args []string) (RunResult, error)
}

// FFmpeg is the production Delegate, invoking the real ffmpeg binary once,
// non-interactively. Failures are reported, never retried.
type FFmpeg struct {
	logger *slog.Logger
}

func NewFFmpeg(logger *slog.Logger) *FFmpeg {
	return &FFmpeg{logger: logger}
}

func (f *FFmpeg) Render(ctx context.Context, args []string) (RunResult, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	// Capture stderr with bounded buffer; ffmpeg writes its progress there.
	var stderrBuf bytes.Buffer
	cmd.Stderr = io.Writer(&limitedWriter{w: &stderrBuf, limit: maxStderrBytes})
	cmd.Stdout = io.Discard

	if f.logger != nil {
		f.logger.Info("invoking ffmpeg", "args", args)
	}

	err := cmd.Run()
	elapsed := time.Since(start)

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			err = nil // exit status is carried in the result
		} else {
			// Could not start at all (typically ffmpeg missing from PATH).
			exitCode = -1
		}
	}

	result := RunResult{
		ExitCode:   exitCode,
		StderrTail: stderrBuf.String(),
		Duration:   elapsed,
	}

	if f.logger != nil {
		if result.IsSuccess() {
			f.logger.Info("ffmpeg finished", "duration_ms", elapsed.Milliseconds())
		} else {
			f.logger.Warn("ffmpeg failed",
				"exit_code", exitCode,
				"duration_ms", elapsed.Milliseconds(),
				"stderr_tail", truncate(result.StderrTail, 512),
			)
		}
	}

	return result, err
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		// Keep only the tail
		b := lw.w.Bytes()
		lw.w.Reset()
		lw.w.Write(b[len(b)-lw.limit:])
	}
	return n, nil
}
