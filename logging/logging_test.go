package logging

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
)

// bufferLogger returns a DefaultLogger whose streams are captured in
// the returned buffers.
func bufferLogger(useColors bool) (*DefaultLogger, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	d := &DefaultLogger{
		stdoutLogger: log.New(&stdout, "", 0),
		stderrLogger: log.New(&stderr, "", 0),
		level:        DebugLevel,
		fields:       make(Fields),
		useColors:    useColors,
	}
	return d, &stdout, &stderr
}

// --- Levels ---

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestSetLevelFilters(t *testing.T) {
	d, stdout, stderr := bufferLogger(false)
	d.SetLevel(WarnLevel)

	d.Debug("debug message")
	d.Info("info message")
	d.Warn("warn message")
	d.Error(nil, "error message")

	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty below WarnLevel", stdout.String())
	}
	out := stderr.String()
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("stderr = %q, want warn and error messages", out)
	}
}

func TestStreamRouting(t *testing.T) {
	d, stdout, stderr := bufferLogger(false)

	d.Debug("d")
	d.Info("i")
	d.Warn("w")
	d.Error(nil, "e")

	if got := stdout.String(); !strings.Contains(got, "[DEBUG] d") || !strings.Contains(got, "[INFO] i") {
		t.Errorf("stdout = %q, want debug and info lines", got)
	}
	if got := stderr.String(); !strings.Contains(got, "[WARN] w") || !strings.Contains(got, "[ERROR] e") {
		t.Errorf("stderr = %q, want warn and error lines", got)
	}
}

// --- Formatting ---

func TestFormatMessageFields(t *testing.T) {
	d, _, _ := bufferLogger(false)

	msg := d.formatMessage(InfoLevel, nil, "decoded", Fields{"format": "wav"})
	if !strings.Contains(msg, "[INFO] decoded") {
		t.Errorf("formatMessage = %q, want level prefix and message", msg)
	}
	if !strings.Contains(msg, "format:wav") {
		t.Errorf("formatMessage = %q, want fields rendered", msg)
	}
}

func TestFormatMessageError(t *testing.T) {
	d, _, _ := bufferLogger(false)

	msg := d.formatMessage(ErrorLevel, errors.New("short read"), "decode failed")
	if !strings.Contains(msg, "decode failed: short read") {
		t.Errorf("formatMessage = %q, want error appended to message", msg)
	}
}

func TestFormatMessageColors(t *testing.T) {
	colored, _, _ := bufferLogger(true)
	plain, _, _ := bufferLogger(false)

	if msg := colored.formatMessage(WarnLevel, nil, "x"); !strings.Contains(msg, ColorYellow) {
		t.Errorf("colored warn = %q, want yellow escape", msg)
	}
	if msg := colored.formatMessage(ErrorLevel, nil, "x"); !strings.Contains(msg, ColorRed) {
		t.Errorf("colored error = %q, want red escape", msg)
	}
	if msg := colored.formatMessage(InfoLevel, nil, "x"); strings.Contains(msg, ColorReset) {
		t.Errorf("colored info = %q, want no escapes", msg)
	}
	if msg := plain.formatMessage(ErrorLevel, nil, "x"); strings.Contains(msg, ColorReset) {
		t.Errorf("plain error = %q, want no escapes", msg)
	}
}

func TestNewDefaultLoggerNoColor(t *testing.T) {
	d := NewDefaultLoggerNoColor()
	if d.useColors {
		t.Error("NewDefaultLoggerNoColor() produced a colored logger")
	}
	if msg := d.formatMessage(ErrorLevel, nil, "x"); strings.Contains(msg, ColorReset) {
		t.Errorf("formatMessage = %q, want no escapes", msg)
	}
}

// --- Derived loggers ---

func TestWithFieldsMerge(t *testing.T) {
	d, stdout, _ := bufferLogger(false)

	derived := d.WithFields(Fields{"component": "ingest"})
	derived.Info("opened", Fields{"path": "a.wav"})

	out := stdout.String()
	if !strings.Contains(out, "component:ingest") || !strings.Contains(out, "path:a.wav") {
		t.Errorf("output = %q, want preset and call fields merged", out)
	}
}

func TestWithFieldsIsolated(t *testing.T) {
	d, stdout, _ := bufferLogger(false)

	d.WithFields(Fields{"component": "ingest"})
	d.Info("plain")

	if out := stdout.String(); strings.Contains(out, "component") {
		t.Errorf("output = %q, want parent logger unchanged", out)
	}
}

func TestWithContextFields(t *testing.T) {
	d, stdout, _ := bufferLogger(false)

	ctx := ContextWithFields(context.Background(), Fields{"track_id": "t-1"})
	d.WithContext(ctx).Info("analyzing")

	if out := stdout.String(); !strings.Contains(out, "track_id:t-1") {
		t.Errorf("output = %q, want context fields attached", out)
	}
}

func TestWithContextEmpty(t *testing.T) {
	d, _, _ := bufferLogger(false)

	if got := d.WithContext(context.Background()); got != Logger(d) {
		t.Error("WithContext() without fields should return the receiver")
	}
	if fields := FieldsFromContext(context.Background()); fields != nil {
		t.Errorf("FieldsFromContext() = %v, want nil", fields)
	}
}

// --- Global logger ---

func TestSetGlobalLogger(t *testing.T) {
	saved := GetGlobalLogger()
	defer SetGlobalLogger(saved)

	d, stdout, _ := bufferLogger(false)
	SetGlobalLogger(d)
	Info("global message")

	if out := stdout.String(); !strings.Contains(out, "global message") {
		t.Errorf("output = %q, want message through global logger", out)
	}

	SetGlobalLogger(nil)
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Errorf("GetGlobalLogger() after nil = %T, want *NoOpLogger", GetGlobalLogger())
	}
}

func TestColorToggles(t *testing.T) {
	saved := GetGlobalLogger()
	defer SetGlobalLogger(saved)

	d, _, _ := bufferLogger(true)
	SetGlobalLogger(d)

	DisableColors()
	if d.useColors {
		t.Error("DisableColors() left colors enabled")
	}
	EnableColors()
	if !d.useColors {
		t.Error("EnableColors() left colors disabled")
	}
}

func TestNoOpLoggerDiscards(t *testing.T) {
	n := &NoOpLogger{}
	n.Debug("x")
	n.Info("x")
	n.Warn("x")
	n.Error(errors.New("x"), "x")
	n.SetLevel(DebugLevel)

	if n.WithFields(Fields{"a": 1}) != Logger(n) {
		t.Error("NoOpLogger.WithFields() should return the receiver")
	}
	if n.WithContext(context.Background()) != Logger(n) {
		t.Error("NoOpLogger.WithContext() should return the receiver")
	}
}
