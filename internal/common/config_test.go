package common

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestClampFloors(t *testing.T) {
	c := &Config{}
	c.OCR.DPI = 30
	c.Batch.ChildTimeout = 5 * time.Second
	c.Clamp()
	if c.OCR.DPI != 72 {
		t.Errorf("DPI = %d, want the 72 floor", c.OCR.DPI)
	}
	if c.Batch.ChildTimeout != 30*time.Second {
		t.Errorf("ChildTimeout = %v, want the 30s floor", c.Batch.ChildTimeout)
	}

	c.OCR.DPI = 300
	c.Batch.ChildTimeout = 2 * time.Minute
	c.Clamp()
	if c.OCR.DPI != 300 || c.Batch.ChildTimeout != 2*time.Minute {
		t.Error("values above the floors must pass through")
	}
}

func TestValidate(t *testing.T) {
	c := &Config{}
	if err := c.Validate(); err == nil {
		t.Error("empty input dir must not validate")
	}

	c.InputDir = "/no/such/dir"
	err := c.Validate()
	if err == nil {
		t.Fatal("missing input dir must not validate")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want an AppError wrapping ErrInvalidInput", err)
	}

	c.InputDir = t.TempDir()
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v for an existing directory", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
