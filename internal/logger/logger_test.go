package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "quote", LevelWarning)
	l.Info("hidden %d", 1)
	l.Warning("fallback for %s", "AAPL")

	out := buf.String()
	if strings.Contains(out, "hidden") { t.Fatalf("info should be filtered: %q", out) }
	if !strings.Contains(out, "[quote] WARNING: fallback for AAPL") { t.Fatalf("unexpected output: %q", out) }
}

func TestLogger_NamedSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	child := NewWithWriter(&buf, "root", LevelDebug).Named("cache")
	child.Debug("hit")
	if !strings.Contains(buf.String(), "[cache] DEBUG: hit") { t.Fatalf("unexpected output: %q", buf.String()) }
}

func TestLogger_NilIsSilent(t *testing.T) {
	var l *Logger
	l.Error("nothing happens")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": LevelDebug, "WARN": LevelWarning, "ERROR": LevelError, "": LevelInfo}
	for in, want := range cases {
		if got := ParseLevel(in); got != want { t.Fatalf("ParseLevel(%q)=%v want %v", in, got, want) }
	}
}
