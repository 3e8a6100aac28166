package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/carrierlink-systems/carrierlink/common/middleware"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  slog.Level
		format string
	}{
		{
			name:   "json format with info level",
			level:  slog.LevelInfo,
			format: "json",
		},
		{
			name:   "text format with debug level",
			level:  slog.LevelDebug,
			format: "text",
		},
		{
			name:   "default format (json) with error level",
			level:  slog.LevelError,
			format: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level, tt.format)
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
			if logger.Logger == nil {
				t.Fatal("expected non-nil underlying logger")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestWithContext(t *testing.T) {
	logger := New(slog.LevelInfo, "json")

	// Without a request ID the context-aware logger is the base logger.
	plain := logger.WithContext(context.Background())
	if plain == nil {
		t.Fatal("expected non-nil logger")
	}

	// With a request ID in context a derived logger is returned.
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	derived := logger.WithContext(ctx)
	if derived == nil {
		t.Fatal("expected non-nil derived logger")
	}
	if derived == logger.Logger {
		t.Error("expected a derived logger when request ID is present")
	}
}

func TestWith(t *testing.T) {
	logger := New(slog.LevelInfo, "json")
	child := logger.With(slog.String("component", "journal-monitor"))
	if child == nil || child.Logger == nil {
		t.Fatal("expected non-nil child logger")
	}
	if child == logger {
		t.Error("With should return a new logger")
	}
}
