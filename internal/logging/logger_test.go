package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestComponentLoggerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelWarn, "Detect")

	logger.Debug("dropped %d", 1)
	logger.Info("dropped %d", 2)
	logger.Warn("kept %d", 3)
	logger.Error("kept %d", 4)

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("expected debug/info suppressed at warn level, got %q", out)
	}
	if !strings.Contains(out, "[WARN] [Detect]") || !strings.Contains(out, "kept 3") {
		t.Fatalf("expected warn line with component, got %q", out)
	}
	if !strings.Contains(out, "kept 4") {
		t.Fatalf("expected error line, got %q", out)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := ParseLevel("nonsense"); got != LevelInfo {
		t.Fatalf("expected info for unknown level, got %v", got)
	}
	if got := ParseLevel("warning"); got != LevelWarn {
		t.Fatalf("expected warn for warning alias, got %v", got)
	}
}

func TestOrNopHandlesTypedNilPointers(t *testing.T) {
	var typed *componentLogger
	var logger Logger = typed
	if !IsNil(logger) {
		t.Fatalf("expected typed nil pointer to be detected")
	}
	safe := OrNop(logger)
	if IsNil(safe) {
		t.Fatalf("expected OrNop to return a usable logger")
	}
	safe.Info("hello %s", "world") // should not panic
}

func TestMultiFansOutAndFlattens(t *testing.T) {
	var a, b bytes.Buffer
	inner := Multi(New(&a, LevelDebug, "a"))
	logger := Multi(inner, New(&b, LevelDebug, "b"), nil)

	logger.Info("hello %s", "world")

	if !strings.Contains(a.String(), "hello world") {
		t.Fatalf("expected first logger to receive line, got %q", a.String())
	}
	if !strings.Contains(b.String(), "hello world") {
		t.Fatalf("expected second logger to receive line, got %q", b.String())
	}

	if got := Multi(); got != Nop() {
		t.Fatalf("expected empty fan-out to collapse to nop")
	}
}
