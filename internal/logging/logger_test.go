package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogger_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(LevelInfo, &buf)

	logger.Info("Fetched items", WithFields(map[string]interface{}{
		"source": "newsdata",
		"count":  3,
	}))

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	if line["msg"] != "Fetched items" {
		t.Errorf("msg = %v, want %q", line["msg"], "Fetched items")
	}
	if line["source"] != "newsdata" {
		t.Errorf("source = %v, want newsdata", line["source"])
	}
	if line["count"] != float64(3) {
		t.Errorf("count = %v, want 3", line["count"])
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(LevelWarn, &buf)

	logger.Debug("debug line")
	logger.Info("info line")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	logger.Warn("warn line", WithField("error", "boom"))
	if !strings.Contains(buf.String(), "warn line") {
		t.Errorf("expected warn line in output, got %q", buf.String())
	}
}

func TestLogger_NilIsSafe(t *testing.T) {
	var logger *Logger
	logger.Info("ignored")
}
