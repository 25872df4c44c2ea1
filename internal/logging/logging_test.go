package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewToDevelopmentIsText(t *testing.T) {
	var buf bytes.Buffer
	l := NewTo(&buf, "development", "info")
	l.Info("lead saved", "lead_id", 7)

	out := buf.String()
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, "lead_id=7") {
		t.Fatalf("unexpected text output: %q", out)
	}
}

func TestNewToProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewTo(&buf, "production", "debug")
	l.Debug("probe", "url", "https://acme.test")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if m["url"] != "https://acme.test" {
		t.Fatalf("url = %v", m["url"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromFallsBackToDefault(t *testing.T) {
	if From(context.Background()) != slog.Default() {
		t.Fatal("expected default logger")
	}
	l := Discard()
	if From(WithLogger(context.Background(), l)) != l {
		t.Fatal("expected stored logger")
	}
}
