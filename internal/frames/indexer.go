package frames

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const frameExtension = ".png"

// Index walks root recursively and returns all screenshot frames with a
// parseable capture timestamp, sorted ascending by that timestamp. Ties
// keep traversal order. Files without a valid timestamp are logged and
// skipped; they never abort the run. An empty result is not an error here,
// the caller decides whether zero frames is terminal.
func Index(root string, logger *slog.Logger) ([]Frame, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access screenshots directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("screenshots path is not a directory: %s", root)
	}

	var result []Frame
	err = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), frameExtension) {
			return nil
		}

		capturedAt, ok := ParseCapturedAt(d.Name())
		if !ok {
			if logger != nil {
				logger.Warn("skipping file without a valid timestamp", "file", d.Name())
			}
			return nil
		}

		result = append(result, Frame{Path: p, CapturedAt: capturedAt})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk failed: %w", err)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CapturedAt.Before(result[j].CapturedAt)
	})

	if logger != nil {
		logger.Info("frame index complete", "frames", len(result), "root", root)
	}
	return result, nil
}
