package encode

import (
	"bytes"
	"math"
	"testing"
)

func TestParseProbeDuration(t *testing.T) {
	out := []byte(`{"format": {"duration": "45.013000"}}`)
	got, err := parseProbeDuration(out)
	if err != nil {
		t.Fatalf("parseProbeDuration() error = %v", err)
	}
	if math.Abs(got-45.013) > 1e-9 {
		t.Errorf("parseProbeDuration() = %v, want 45.013", got)
	}
}

func TestParseProbeDuration_Malformed(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{"not json", "garbage"},
		{"missing duration", `{"format": {}}`},
		{"empty object", `{}`},
		{"non-numeric duration", `{"format": {"duration": "n/a"}}`},
	}
	for _, tt := range tests {
		if _, err := parseProbeDuration([]byte(tt.out)); err == nil {
			t.Errorf("%s: expected error, got nil", tt.name)
		}
	}
}

func TestLimitedWriter_KeepsTail(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, limit: 8}

	lw.Write([]byte("0123456789"))
	lw.Write([]byte("abcd"))

	if got := buf.String(); got != "6789abcd" {
		t.Errorf("limitedWriter kept %q, want %q", got, "6789abcd")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("0123456789", 4); got != "...6789" {
		t.Errorf("truncate long = %q, want ...6789", got)
	}
}
