package encode

import (
	"fmt"
	"os"
	"strings"

	"github.com/runewatch/runewatch/internal/frames"
)

// EscapeManifestPath escapes a frame path for embedding in a concat
// manifest line. Single quotes become '\'' so an adversarial filename
// cannot break out of the quoted path.
func EscapeManifestPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}

// WriteManifest serializes the ordered frame sequence into a temporary
// concat-demuxer list file, one `file '<path>'` line per frame, and returns
// its path. The caller owns removal of the file.
func WriteManifest(seq []frames.Frame) (string, error) {
	f, err := os.CreateTemp("", "runewatch-frames-*.txt")
	if err != nil {
		return "", fmt.Errorf("cannot create manifest: %w", err)
	}

	var b strings.Builder
	for _, frame := range seq {
		b.WriteString("file '")
		b.WriteString(EscapeManifestPath(frame.Path))
		b.WriteString("'\n")
	}

	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("cannot write manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("cannot close manifest: %w", err)
	}
	return f.Name(), nil
}
