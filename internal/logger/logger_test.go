package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   zapcore.Level
		wantOK bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{"info", zapcore.InfoLevel, true},
		{"warn", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"verbose", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
	}

	for _, tt := range tests {
		got, ok := parseLevel(tt.in)
		if ok != tt.wantOK {
			t.Errorf("parseLevel(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
		}
		if ok && got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNamedCarriesComponent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).Named("saver")

	log.Info("saved", String("title", "x"), Int("tabs", 3), Error(errors.New("boom")))
	log.Debugf("%s %d", "count", 2)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].LoggerName != "saver" {
		t.Errorf("LoggerName = %q, want saver", entries[0].LoggerName)
	}
	fields := entries[0].ContextMap()
	if fields["title"] != "x" || fields["tabs"] != int64(3) || fields["error"] != "boom" {
		t.Errorf("unexpected fields: %v", fields)
	}
	if entries[1].Message != "count 2" {
		t.Errorf("Debugf message = %q, want %q", entries[1].Message, "count 2")
	}
}

func TestNewBuildsBothEncoders(t *testing.T) {
	for _, pretty := range []bool{true, false} {
		if l := New("warn", pretty); l == nil {
			t.Errorf("New(warn, %v) returned nil", pretty)
		}
	}
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.Error("ignored")
	_ = l.Sync()
}
