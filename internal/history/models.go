package history

import (
	"time"

	"github.com/google/uuid"
)

const (
	RenderStatusRunning   = "running"
	RenderStatusCompleted = "completed"
	RenderStatusFailed    = "failed"
)

// Render is one pipeline invocation: how many frames went in, the
// computed durations, the encoder used and how the delegated run ended.
type Render struct {
	ID            string    `json:"id"`
	FrameCount    int       `json:"frame_count"`
	VideoDuration float64   `json:"video_duration"`
	PadDuration   float64   `json:"pad_duration"`
	Encoder       string    `json:"encoder"`
	OutputPath    string    `json:"output_path"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewID() string {
	return uuid.NewString()
}
