package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo}, // Defaults to info
		{"", slog.LevelInfo},        // Defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := parseLevel(tt.level); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
			log := New(tt.level, "json")
			if !log.Enabled(context.Background(), tt.expected) {
				t.Errorf("logger should be enabled at %v", tt.expected)
			}
		})
	}
}

func TestFormats(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "info", "json").Info("job completed", "job_id", "abc")
	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("json output did not decode: %v", err)
	}
	if record["job_id"] != "abc" {
		t.Errorf("expected job_id attribute, got %v", record)
	}

	buf.Reset()
	NewWithWriter(&buf, "info", "text").Info("job completed", "job_id", "abc")
	if !strings.Contains(buf.String(), "job_id=abc") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}
