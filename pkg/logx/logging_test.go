package logx

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" INFO ", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.raw, zerolog.InfoLevel); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

type countingWriter struct {
	lines int
}

func (c *countingWriter) Write(p []byte) (int, error) { return len(p), nil }

func (c *countingWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	c.lines++
	return len(p), nil
}

func TestLimitedWriterAlwaysPassesWarnings(t *testing.T) {
	t.Parallel()
	sink := &countingWriter{}
	w := newLimitedWriter(sink, 1)

	// Exhaust the budget, then verify info drops but warn passes.
	for i := 0; i < 10; i++ {
		_, _ = w.WriteLevel(zerolog.InfoLevel, []byte("tick"))
	}
	infoLines := sink.lines
	if infoLines >= 10 {
		t.Fatalf("limiter passed all %d info lines", infoLines)
	}
	_, _ = w.WriteLevel(zerolog.WarnLevel, []byte("warn"))
	if sink.lines != infoLines+1 {
		t.Fatal("warn line should bypass the limiter")
	}
}

func TestZeroLoggerIsSafe(t *testing.T) {
	t.Parallel()
	var l Logger
	if !l.IsZero() {
		t.Fatal("zero logger should report IsZero")
	}
	l.Info("no sink") // must not panic
	l2 := l.With(String("k", "v"))
	l2.Error("still no sink")
	if l2.IsZero() {
		t.Fatal("derived logger with fields is no longer zero")
	}
}
