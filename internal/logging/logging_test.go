package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestInitText(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	InitWriter(&buf, "info", "text")
	slog.Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("text output missing message: %q", buf.String())
	}
}

func TestInitJSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	InitWriter(&buf, "debug", "JSON")
	slog.Debug("detail")
	if !strings.Contains(buf.String(), `"msg":"detail"`) {
		t.Fatalf("json output missing message: %q", buf.String())
	}
	SetLevel(slog.LevelInfo)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"DEBUG", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"  Error  ", slog.LevelError, true},
		{"", slog.LevelInfo, true},
		{"unknown", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err == nil) != tt.ok {
			t.Errorf("ParseLevel(%q): err = %v, want ok=%v", tt.input, err, tt.ok)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	InitWriter(&buf, "loud", "text")
	if Level() != slog.LevelInfo {
		t.Fatalf("Level() = %v, want info", Level())
	}
}

func TestSetLevel(t *testing.T) {
	SetLevel(slog.LevelWarn)
	if Level() != slog.LevelWarn {
		t.Errorf("SetLevel(Warn): got %v", Level())
	}
	SetLevel(slog.LevelInfo)
}

func TestDynamicHandlerEnabled(t *testing.T) {
	SetLevel(slog.LevelWarn)
	defer SetLevel(slog.LevelInfo)

	h := &dynamicHandler{}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should not be enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestDynamicHandlerWithAttrsAndGroup(t *testing.T) {
	h := &dynamicHandler{attrs: []slog.Attr{slog.String("component", "x")}}

	if h.WithAttrs(nil) != h {
		t.Error("WithAttrs(nil) should return same handler")
	}
	h2, ok := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).(*dynamicHandler)
	if !ok {
		t.Fatal("WithAttrs should return *dynamicHandler")
	}
	if len(h2.attrs) != 2 || len(h.attrs) != 1 {
		t.Errorf("attrs: got %d on child, %d on parent", len(h2.attrs), len(h.attrs))
	}

	if h.WithGroup("") != h {
		t.Error("WithGroup(\"\") should return same handler")
	}
	h3, ok := h.WithGroup("grp").(*dynamicHandler)
	if !ok {
		t.Fatal("WithGroup should return *dynamicHandler")
	}
	if len(h3.groups) != 1 || h3.groups[0] != "grp" {
		t.Errorf("groups: got %v", h3.groups)
	}
}

func TestCaptureForTest(t *testing.T) {
	c := CaptureForTest()
	defer c.Restore()

	slog.Info("hello")
	slog.Warn("warning message")
	slog.Debug("debug detail")

	if n := len(c.Records()); n != 3 {
		t.Fatalf("expected 3 records, got %d", n)
	}
	if !c.Has(slog.LevelInfo, "hello") {
		t.Error("should have info 'hello'")
	}
	if !c.Has(slog.LevelWarn, "warning") {
		t.Error("should have warn 'warning'")
	}
	if c.Has(slog.LevelError, "hello") {
		t.Error("should not match error level")
	}
	if c.Count(slog.LevelDebug) != 1 {
		t.Errorf("expected 1 debug, got %d", c.Count(slog.LevelDebug))
	}
	if c.Count(slog.LevelError) != 0 {
		t.Errorf("expected 0 error, got %d", c.Count(slog.LevelError))
	}
}

func TestCaptureRestore(t *testing.T) {
	prev := slog.Default()
	prevLevel := Level()
	c := CaptureForTest()
	c.Restore()

	if slog.Default() != prev {
		t.Error("default logger not restored")
	}
	if Level() != prevLevel {
		t.Errorf("level not restored: got %v, want %v", Level(), prevLevel)
	}
}

func TestForTagsComponent(t *testing.T) {
	c := CaptureForTest()
	defer c.Restore()

	logger := For("ownership")
	logger.Debug("granting", "item", "sword_of_fire")

	if !c.HasAttr(slog.LevelDebug, "granting", "component", "ownership") {
		t.Error("record should carry component=ownership")
	}
	if !c.HasAttr(slog.LevelDebug, "granting", "item", "sword_of_fire") {
		t.Error("record should carry item attr")
	}
	if c.HasAttr(slog.LevelDebug, "granting", "component", "other") {
		t.Error("HasAttr matched the wrong value")
	}
}

func TestForFollowsLaterDefault(t *testing.T) {
	logger := For("late")

	c := CaptureForTest()
	defer c.Restore()

	logger.Info("after capture")
	if !c.Has(slog.LevelInfo, "after capture") {
		t.Error("For() logger created earlier should still reach the capture")
	}
}
