package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelWarn,
		"verbose": slog.LevelWarn,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "info")
	t.Cleanup(func() { std = nil })

	ctx := context.Background()
	Debug(ctx, "hidden")
	Info(ctx, "shown", "file", "a.png")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "file=a.png") {
		t.Fatalf("expected info line with attrs, got %q", out)
	}
	if !strings.Contains(out, "app=squeeze") {
		t.Fatalf("expected app attr, got %q", out)
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	var buf bytes.Buffer
	Init(&buf, "")
	t.Cleanup(func() { std = nil })

	Debug(context.Background(), "trial detail")
	if !strings.Contains(buf.String(), "trial detail") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}

func TestUninitializedLoggerIsWarnLevel(t *testing.T) {
	std = nil
	if fallback.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be filtered before Init")
	}
	if !fallback.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("warnings should pass before Init")
	}
	if activeLogger() != fallback {
		t.Fatal("expected the warn-level fallback before Init")
	}
}
