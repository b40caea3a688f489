package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFormattedTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := NewFormatted(slog.LevelInfo, &TextFormatter{}, &buf)

	l.Module("compile").Info("starting", "bytes", 42)

	out := buf.String()
	if !strings.Contains(out, "INFO") {
		t.Fatalf("output missing level: %s", out)
	}
	if !strings.Contains(out, "starting") {
		t.Fatalf("output missing message: %s", out)
	}
	if !strings.Contains(out, "module=compile") {
		t.Fatalf("output missing module field: %s", out)
	}
	if !strings.Contains(out, "bytes=42") {
		t.Fatalf("output missing bytes field: %s", out)
	}
}

func TestNewFormattedRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewFormatted(slog.LevelWarn, &TextFormatter{}, &buf)

	l.Info("should be dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below configured level, got: %s", buf.String())
	}

	l.Warn("should appear")
	if buf.Len() == 0 {
		t.Fatal("expected output at or above configured level")
	}
}

func TestNewFormattedColorFormatterContainsANSI(t *testing.T) {
	var buf bytes.Buffer
	l := NewFormatted(slog.LevelInfo, &ColorFormatter{}, &buf)
	l.Error("boom")

	if !strings.Contains(buf.String(), ansiRed) {
		t.Fatalf("expected ANSI color escape in output: %q", buf.String())
	}
}

func TestNewFormattedJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := NewFormatted(slog.LevelInfo, &JSONFormatter{}, &buf)
	l.Info("hello", "k", "v")

	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) {
		t.Fatalf("expected JSON msg field: %s", out)
	}
	if !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("expected JSON custom field: %s", out)
	}
}
