package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONWithServiceField(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "info", Service: "todo-api", Env: "production", Output: &buf})

	l.Debug().Msg("hidden")
	l.Info().Str("user_id", "u1").Msg("signed in")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["service"] != "todo-api" || entry["user_id"] != "u1" || entry["message"] != "signed in" {
		t.Errorf("entry = %v", entry)
	}
}

func TestInit_OnlyFirstCallWins(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Output: &first, Env: "production"})
	Init(Options{Output: &second, Env: "production"})

	l := Get()
	l.Info().Msg("hello")
	if first.Len() == 0 || second.Len() != 0 {
		t.Errorf("first=%d second=%d bytes", first.Len(), second.Len())
	}
}

func TestGet_BeforeInitIsSilent(t *testing.T) {
	Reset()
	l := Get()
	if l.GetLevel() != zerolog.Disabled {
		t.Errorf("level = %v, want disabled", l.GetLevel())
	}
}
