package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newJSONLogger(t *testing.T, level string, showCodes bool) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: "json", Output: &buf, ShowCodes: showCodes})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew_Formats(t *testing.T) {
	for _, format := range []string{"json", "text", "console", ""} {
		t.Run(format, func(t *testing.T) {
			l, err := New(Config{Level: "info", Format: format, Output: &bytes.Buffer{}})
			if err != nil || l == nil {
				t.Fatalf("New(%q) = %v, %v", format, l, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.Format != "json" || cfg.Output == nil {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
	if cfg.ShowCodes {
		t.Error("codes should be masked by default")
	}
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newJSONLogger(t, "debug", false)

	tests := []struct {
		level string
		log   func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.log("snapshot written", "count", 3)

			entry := decodeEntry(t, buf)
			if entry["level"] != tt.level || entry["msg"] != "snapshot written" {
				t.Errorf("entry = %v", entry)
			}
			if entry["count"] != float64(3) {
				t.Errorf("count = %v, want 3", entry["count"])
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newJSONLogger(t, "warn", false)

	l.Debug("client connected")
	l.Info("client connected")
	if buf.Len() > 0 {
		t.Errorf("debug/info logged at warn level: %s", buf.String())
	}

	l.Warn("client disconnected mid-frame")
	if buf.Len() == 0 {
		t.Error("warn should be logged at warn level")
	}
}

func TestSetLevel(t *testing.T) {
	l, buf := newJSONLogger(t, "error", false)

	l.Info("before")
	if buf.Len() > 0 {
		t.Error("info should be filtered at error level")
	}

	SetLevel("debug")
	l.Info("after")
	if buf.Len() == 0 {
		t.Error("info should be logged after SetLevel(debug)")
	}

	tests := []struct{ in, want string }{
		{"DEBUG", "debug"},
		{"info", "info"},
		{"warning", "warn"},
		{"error", "error"},
		{"bogus", "info"},
		{"", "info"},
	}
	for _, tt := range tests {
		SetLevel(tt.in)
		if got := GetLevel(); got != tt.want {
			t.Errorf("SetLevel(%q); GetLevel() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "warning", "error"} {
		if !ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = false", level)
		}
	}
	for _, level := range []string{"", "trace", "fatal"} {
		if ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = true", level)
		}
	}
}

func TestLogger_MasksCodes(t *testing.T) {
	tests := []struct {
		name      string
		showCodes bool
		want      string
	}{
		{"masked", false, "AB*****Z"},
		{"shown", true, "ABCDEF1Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newJSONLogger(t, "info", tt.showCodes)
			l.With("component", "service").Info("code redeemed", CodeKey, "ABCDEF1Z")

			entry := decodeEntry(t, buf)
			if entry[CodeKey] != tt.want {
				t.Errorf("code = %v, want %s", entry[CodeKey], tt.want)
			}
			if entry["component"] != "service" {
				t.Errorf("component = %v, want service", entry["component"])
			}
		})
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("server started", "address", "127.0.0.1:5000")

	out := buf.String()
	if !strings.Contains(out, "msg=\"server started\"") || !strings.Contains(out, "address=127.0.0.1:5000") {
		t.Errorf("text output = %q", out)
	}
}

func TestComponent(t *testing.T) {
	l, buf := newJSONLogger(t, "info", false)
	SetDefault(l)

	for _, name := range []string{"server", "storage", "persist"} {
		buf.Reset()
		Component(name).Info("ready")
		if entry := decodeEntry(t, buf); entry["component"] != name {
			t.Errorf("component = %v, want %s", entry["component"], name)
		}
	}
}

func TestSetDefault(t *testing.T) {
	l, _ := newJSONLogger(t, "debug", false)
	SetDefault(l)

	if slog.Default() != l.Slog() {
		t.Error("slog.Default() should be the logger passed to SetDefault")
	}
	if defaultLogger.Load() != l.(*slogLogger) {
		t.Error("SetDefault should replace the package default logger")
	}
}
