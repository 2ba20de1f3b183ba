// Package frames discovers timestamped screenshot files and orders them
// into the sequence the rest of the pipeline consumes.
package frames

import (
	"regexp"
	"time"
)

// Frame is one screenshot file with the capture instant parsed from its
// filename. Immutable once created.
type Frame struct {
	Path       string
	CapturedAt time.Time
}

const timestampLayout = "2006-01-02_15-04-05"

// timestampRe matches the capture timestamp embedded in screenshot
// filenames, e.g. "shot 2024-01-01_00-02-29.png".
var timestampRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}`)

// ParseCapturedAt extracts and parses the capture timestamp from a filename.
// It returns false when the filename contains no timestamp-shaped substring
// or the substring is not a valid calendar date/time.
func ParseCapturedAt(filename string) (time.Time, bool) {
	match := timestampRe.FindString(filename)
	if match == "" {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(timestampLayout, match, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
