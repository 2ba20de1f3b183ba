package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/runewatch/runewatch/internal/encode"
	"github.com/runewatch/runewatch/internal/history"
)

type fakeDelegate struct {
	result       encode.RunResult
	err          error
	invocations  int
	args         []string
	manifestSeen bool // manifest file existed at invocation time
}

func (f *fakeDelegate) Render(ctx context.Context, args []string) (encode.RunResult, error) {
	f.invocations++
	f.args = args
	for i, a := range args {
		if a == "-i" && i+1 < len(args) {
			if _, err := os.Stat(args[i+1]); err == nil {
				f.manifestSeen = true
			}
			break
		}
	}
	return f.result, f.err
}

type fakeEncoderProber struct{}

func (fakeEncoderProber) Available(codec string) bool { return false }

type fakeAudioProber struct {
	duration float64
	err      error
}

func (f *fakeAudioProber) Duration(path string) (float64, error) { return f.duration, f.err }

type memoryRepo struct {
	renders map[string]*history.Render
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{renders: map[string]*history.Render{}}
}

func (m *memoryRepo) CreateRender(ctx context.Context, r *history.Render) error {
	cp := *r
	m.renders[r.ID] = &cp
	return nil
}

func (m *memoryRepo) GetRender(ctx context.Context, id string) (*history.Render, error) {
	return m.renders[id], nil
}

func (m *memoryRepo) ListRecent(ctx context.Context, limit int) ([]*history.Render, error) {
	var out []*history.Render
	for _, r := range m.renders {
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryRepo) UpdateRenderStatus(ctx context.Context, id, status, errorMsg string, durationMs int64) error {
	if r, ok := m.renders[id]; ok {
		r.Status = status
		r.Error = errorMsg
		r.DurationMs = durationMs
	}
	return nil
}

func (m *memoryRepo) single(t *testing.T) *history.Render {
	t.Helper()
	if len(m.renders) != 1 {
		t.Fatalf("history holds %d renders, want 1", len(m.renders))
	}
	for _, r := range m.renders {
		return r
	}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFrames(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func testConfig(dir string) Config {
	return Config{
		ScreenshotsDir:    dir,
		SourceFPS:         5,
		OutputFPS:         30,
		OutputPath:        "out.mp4",
		Quality:           "23",
		EncoderPreference: "cpu",
		HoldLastFrame:     true,
	}
}

func manifestPath(t *testing.T, args []string) string {
	t.Helper()
	for i, a := range args {
		if a == "-i" && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatal("no -i in delegate args")
	return ""
}

func TestRun_EmptyDirectoryNeverInvokesDelegate(t *testing.T) {
	delegate := &fakeDelegate{}
	p := New(testConfig(t.TempDir()), &fakeAudioProber{}, fakeEncoderProber{}, delegate, nil, quietLogger())

	err := p.Run(context.Background())
	if !errors.Is(err, ErrNoFrames) {
		t.Fatalf("Run() error = %v, want ErrNoFrames", err)
	}
	if delegate.invocations != 0 {
		t.Errorf("delegate invoked %d times on empty input, want 0", delegate.invocations)
	}
}

func TestRun_Success(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir,
		"a 2024-01-01_00-00-00.png",
		"b 2024-01-01_00-00-01.png",
	)

	delegate := &fakeDelegate{result: encode.RunResult{ExitCode: 0, Duration: time.Second}}
	repo := newMemoryRepo()
	p := New(testConfig(dir), &fakeAudioProber{}, fakeEncoderProber{}, delegate, repo, quietLogger())

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if delegate.invocations != 1 {
		t.Fatalf("delegate invoked %d times, want 1", delegate.invocations)
	}
	if !delegate.manifestSeen {
		t.Error("manifest did not exist at invocation time")
	}
	if _, err := os.Stat(manifestPath(t, delegate.args)); !os.IsNotExist(err) {
		t.Error("manifest not removed after successful run")
	}

	rec := repo.single(t)
	if rec.Status != history.RenderStatusCompleted {
		t.Errorf("history status = %q, want completed", rec.Status)
	}
	if rec.FrameCount != 2 {
		t.Errorf("history frame count = %d, want 2", rec.FrameCount)
	}
	if rec.Encoder != encode.CodecX264 {
		t.Errorf("history encoder = %q, want %q", rec.Encoder, encode.CodecX264)
	}
}

func TestRun_DelegateFailureCleansManifest(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, "a 2024-01-01_00-00-00.png")

	delegate := &fakeDelegate{result: encode.RunResult{ExitCode: 1, StderrTail: "boom"}}
	repo := newMemoryRepo()
	p := New(testConfig(dir), &fakeAudioProber{}, fakeEncoderProber{}, delegate, repo, quietLogger())

	err := p.Run(context.Background())
	if err == nil {
		t.Fatal("Run() expected error on delegate failure")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q does not surface stderr tail", err)
	}
	if _, statErr := os.Stat(manifestPath(t, delegate.args)); !os.IsNotExist(statErr) {
		t.Error("manifest not removed after failed run")
	}
	if rec := repo.single(t); rec.Status != history.RenderStatusFailed {
		t.Errorf("history status = %q, want failed", rec.Status)
	}
}

func TestRun_MissingExecutable(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, "a 2024-01-01_00-00-00.png")

	delegate := &fakeDelegate{
		result: encode.RunResult{ExitCode: -1},
		err:    errors.New(`exec: "ffmpeg": executable file not found in $PATH`),
	}
	p := New(testConfig(dir), &fakeAudioProber{}, fakeEncoderProber{}, delegate, nil, quietLogger())

	err := p.Run(context.Background())
	if err == nil {
		t.Fatal("Run() expected error when ffmpeg is missing")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error %q does not report the underlying cause", err)
	}
}

func TestRun_MissingMusicFileDisablesAudio(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, "a 2024-01-01_00-00-00.png")

	cfg := testConfig(dir)
	cfg.MusicFile = filepath.Join(dir, "missing.mp3")

	delegate := &fakeDelegate{}
	p := New(cfg, &fakeAudioProber{duration: 100}, fakeEncoderProber{}, delegate, nil, quietLogger())

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	joined := strings.Join(delegate.args, " ")
	if strings.Contains(joined, "-c:a") || strings.Contains(joined, "missing.mp3") {
		t.Errorf("audio wired despite missing file, args: %s", joined)
	}
}

func TestRun_AudioPadding(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir,
		"a 2024-01-01_00-00-00.png",
		"b 2024-01-01_00-00-01.png",
		"c 2024-01-01_00-00-02.png",
		"d 2024-01-01_00-00-03.png",
		"e 2024-01-01_00-00-04.png", // 5 frames @ 5fps = 1.0s of video
	)
	music := filepath.Join(dir, "music.mp3")
	if err := os.WriteFile(music, []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(dir)
	cfg.MusicFile = music

	delegate := &fakeDelegate{}
	p := New(cfg, &fakeAudioProber{duration: 4.0}, fakeEncoderProber{}, delegate, nil, quietLogger())

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	joined := strings.Join(delegate.args, " ")
	if !strings.Contains(joined, "tpad=stop_mode=clone:stop_duration=3") {
		t.Errorf("expected 3s padding stage, args: %s", joined)
	}
	if !strings.Contains(joined, "-c:a aac") {
		t.Errorf("audio stream not mapped, args: %s", joined)
	}
}
